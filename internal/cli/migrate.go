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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-smc/internal/legacy"
	"github.com/jeremyhahn/go-smc/internal/sharefile"
)

func (a *app) migrateCmd() *cobra.Command {
	var outDir, prefix string
	cmd := &cobra.Command{
		Use:   "migrate LEGACY-SHARE...",
		Short: "Re-share go-keychain threshold shares with the configured scheme",
		Long: `Migrate combines go-keychain (sssa) share files and splits the recovered
secret again with the scheme from the config file. The legacy files are
left in place.`,
		Example: `  smc migrate --out-dir shares old/share-1.json old/share-2.json old/share-3.json`,
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

			old := make([]*legacy.Share, len(args))
			for i, path := range args {
				if old[i], err = legacy.ReadFile(path); err != nil {
					return err
				}
			}
			secret, err := legacy.Combine(old)
			if err != nil {
				return err
			}
			defer clear(secret)
			a.printVerbose("recovered %d bytes from %d legacy shares", len(secret), len(old))

			scheme, err := s.scheme()
			if err != nil {
				return err
			}
			shares, err := scheme.Share(secret)
			if err != nil {
				return fmt.Errorf("failed to split: %w", err)
			}
			if err := os.MkdirAll(outDir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			set := s.newSet()
			paths := make([]string, len(shares))
			for i, sh := range shares {
				paths[i] = filepath.Join(outDir, fmt.Sprintf("%s-%d.json", prefix, sh.ID()))
				if err := sharefile.Write(paths[i], set, sh); err != nil {
					return err
				}
			}
			return a.printer().PrintSplit(set, s.cfg.Scheme.Algorithm, paths)
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for new share files")
	cmd.Flags().StringVar(&prefix, "prefix", "share", "share file name prefix")
	return cmd
}
