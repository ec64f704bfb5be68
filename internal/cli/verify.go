// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smc.
//
// go-smc is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-smc/internal/sharefile"
	"github.com/jeremyhahn/go-smc/pkg/infocheck"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify SHARE...",
		Short: "Check the information-checking tags of share files",
		Long: `Verify runs every pairwise tag check among the given share files and
reports which shares the remaining holders accept. Nothing is
reconstructed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			s, err := a.open()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := s.close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			set, shares, err := sharefile.ReadSet(args)
			if err != nil {
				return err
			}
			if set.Checking == "" {
				return fmt.Errorf("shares carry no information-checking tags")
			}
			// Uninstrumented: verification is not a sharing operation.
			s.collector = nil
			scheme, err := s.schemeFor(set)
			if err != nil {
				return err
			}
			checked, ok := scheme.(*infocheck.Scheme)
			if !ok {
				return fmt.Errorf("%s is not an information-checking scheme", set.Checking)
			}
			report, err := checked.Verify(shares)
			if err != nil {
				return err
			}
			if err := a.printer().PrintVerify(set, report); err != nil {
				return err
			}
			if len(report.Valid) < set.Threshold {
				return sss.Reconstructf(checked.Checking(), nil, "%d valid shares, need %d", len(report.Valid), set.Threshold)
			}
			return nil
		},
	}
}

func (a *app) tagLengthCmd() *cobra.Command {
	var threshold, messageBytes, securityBits int
	cmd := &cobra.Command{
		Use:   "tag-length",
		Short: "Print the cevallos tag length for a share size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold < 2 || messageBytes < 1 || securityBits < 1 {
				return fmt.Errorf("threshold must be >= 2 and sizes positive")
			}
			bytes := infocheck.TagLength(threshold, 8*messageBytes, securityBits)
			return a.printer().PrintTagLength(threshold, messageBytes, securityBits, bytes)
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "k", 3, "reconstruction threshold")
	cmd.Flags().IntVar(&messageBytes, "message-bytes", 1024, "authenticated share size in bytes")
	cmd.Flags().IntVar(&securityBits, "security-bits", infocheck.DefaultSecurityBits, "target security in bits")
	return cmd
}
