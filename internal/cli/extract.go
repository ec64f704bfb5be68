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
	"github.com/jeremyhahn/go-smc/pkg/krawczyk"
	"github.com/jeremyhahn/go-smc/pkg/share"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

func (a *app) extractCmd() *cobra.Command {
	var (
		out    string
		start  int
		length int
	)
	cmd := &cobra.Command{
		Use:   "extract SHARE...",
		Short: "Reconstruct a byte range of krawczyk shares",
		Long: `Extract decodes only bytes [start, start+length) from krawczyk share
files. Neither share tags nor the cipher's authentication tag are checked;
the output is reported as unauthenticated.`,
		Example: `  smc extract --start 1048576 --length 4096 shares/share-*.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if start < 0 || length < 1 {
				return fmt.Errorf("invalid range: start %d, length %d", start, length)
			}
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
			if share.Algorithm(set.Algorithm) != share.AlgorithmKrawczyk {
				return fmt.Errorf("extract needs krawczyk shares, have %s", set.Algorithm)
			}
			scheme, err := s.schemeFor(set)
			if err != nil {
				return err
			}
			partial, ok := scheme.(sss.PartialReconstructor)
			if !ok {
				return fmt.Errorf("%s does not support partial reconstruction", set.Algorithm)
			}

			windows := make([]share.Share, len(shares))
			for i, sh := range shares {
				w, err := krawczyk.Window(sh, set.Threshold, start, length)
				if err != nil {
					return err
				}
				windows[i] = w
			}
			r, err := partial.ReconstructPartial(windows, start)
			if err != nil {
				return fmt.Errorf("failed to extract: %w", err)
			}
			if len(r.Data) > length {
				r.Data = r.Data[:length]
			}
			if err := a.report(r); err != nil {
				return err
			}
			return a.writeOutput(out, r.Data)
		},
	}
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&start, "start", 0, "first byte to decode")
	cmd.Flags().IntVar(&length, "length", 1, "number of bytes to decode")
	return cmd
}
