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

// Package cli implements the smc command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the smc command line with os.Args and prints any error to
// stderr in the selected output format.
func Execute() error {
	root := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	err := root.Execute()
	if err != nil {
		format, _ := root.PersistentFlags().GetString("output")
		_ = NewPrinter(format, os.Stderr).PrintError(err) // best-effort
	}
	return err
}

// app carries the global flags and streams shared by every subcommand.
type app struct {
	opts   *Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd builds the command tree reading and writing the given streams.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{opts: NewConfig(), stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "smc",
		Short: "smc - threshold secret sharing and information dispersal",
		Long: `smc splits data into n shares so that any k of them reconstruct it.

Supported schemes:
  - shamir:    information-theoretic secret sharing, shares as large as the data
  - rabin-ids: information dispersal, 1/k-size shares, no secrecy
  - krawczyk:  encrypt, disperse the ciphertext, Shamir-share the key

Any scheme can be wrapped with rabin-ben-or or cevallos information
checking so corrupted shares are detected and discarded.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringVar(&a.opts.ConfigFile, "config", "",
		"config file (defaults plus SMC_* environment when empty)")
	root.PersistentFlags().StringVarP(&a.opts.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	root.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false,
		"verbose output")
	root.PersistentFlags().StringVar(&a.opts.MetricsFile, "metrics-file", "",
		"write Prometheus metrics to this file after the command")

	root.AddCommand(
		a.splitCmd(),
		a.combineCmd(),
		a.extractCmd(),
		a.verifyCmd(),
		a.tagLengthCmd(),
		a.migrateCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) printer() *Printer {
	return NewPrinter(a.opts.OutputFormat, a.stdout)
}

// printVerbose prints a message if verbose mode is enabled
func (a *app) printVerbose(format string, args ...any) {
	if a.opts.Verbose {
		fmt.Fprintf(a.stderr, "[VERBOSE] "+format+"\n", args...)
	}
}
