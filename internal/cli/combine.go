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
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func (a *app) combineCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "combine SHARE...",
		Short: "Reconstruct data from share files",
		Long: `Combine reconstructs the data from at least k share files of one split.
The scheme is taken from the share files. With information checking,
shares that fail verification are reported and skipped.`,
		Example: `  smc combine --out secret.key shares/share-1.json shares/share-3.json shares/share-4.json`,
		Args:    cobra.MinimumNArgs(1),
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
			scheme, err := s.schemeFor(set)
			if err != nil {
				return err
			}
			r, err := scheme.Reconstruct(shares)
			if err != nil {
				return fmt.Errorf("failed to combine: %w", err)
			}
			if err := a.report(r); err != nil {
				return err
			}
			return a.writeOutput(out, r.Data)
		},
	}
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	return cmd
}

// report prints rejected shares and warnings to stderr so stdout can carry
// the data.
func (a *app) report(r *sss.Reconstruction) error {
	if len(r.Rejected) == 0 && len(r.Warnings) == 0 {
		return nil
	}
	return NewPrinter(a.opts.OutputFormat, a.stderr).PrintReconstruction(r)
}
