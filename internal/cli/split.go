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
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-smc/internal/sharefile"
)

type splitOptions struct {
	in        string
	outDir    string
	prefix    string
	threshold int
	total     int
	algorithm string
	checking  string
}

func (a *app) splitCmd() *cobra.Command {
	opts := &splitOptions{}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split data into share files",
		Long: `Split reads data from --in (or stdin) and writes one share file per
holder to --out-dir. Scheme parameters come from the config file and may be
overridden with flags.`,
		Example: `  smc split --in secret.key --out-dir shares -k 3 -n 5
  smc split --algorithm krawczyk --checking cevallos -k 4 -n 7 < backup.tar`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSplit(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.in, "in", "-", "input file, - for stdin")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", ".", "directory for share files")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "share", "share file name prefix")
	cmd.Flags().IntVarP(&opts.threshold, "threshold", "k", 0, "shares needed to reconstruct")
	cmd.Flags().IntVarP(&opts.total, "total", "n", 0, "shares to create")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "", "shamir, rabin-ids or krawczyk")
	cmd.Flags().StringVar(&opts.checking, "checking", "", "none, rabin-ben-or or cevallos")
	return cmd
}

func (a *app) runSplit(cmd *cobra.Command, opts *splitOptions) (err error) {
	s, err := a.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sc := &s.cfg.Scheme
	if cmd.Flags().Changed("threshold") {
		sc.Threshold = opts.threshold
	}
	if cmd.Flags().Changed("total") {
		sc.TotalShares = opts.total
	}
	if opts.algorithm != "" {
		sc.Algorithm = opts.algorithm
	}
	if opts.checking != "" {
		sc.Checking = opts.checking
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	data, err := a.readInput(opts.in)
	if err != nil {
		return err
	}
	scheme, err := s.scheme()
	if err != nil {
		return err
	}
	shares, err := scheme.Share(data)
	if err != nil {
		return fmt.Errorf("failed to split: %w", err)
	}

	if err := os.MkdirAll(opts.outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	set := s.newSet()
	paths := make([]string, len(shares))
	for i, sh := range shares {
		paths[i] = filepath.Join(opts.outDir, fmt.Sprintf("%s-%d.json", opts.prefix, sh.ID()))
		if err := sharefile.Write(paths[i], set, sh); err != nil {
			return err
		}
		a.printVerbose("wrote %s", paths[i])
	}
	return a.printer().PrintSplit(set, sc.Algorithm, paths)
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	// #nosec G304 - input path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func (a *app) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
