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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeremyhahn/go-smc/internal/sharefile"
	"github.com/jeremyhahn/go-smc/pkg/infocheck"
	"github.com/jeremyhahn/go-smc/pkg/metrics"
	"github.com/jeremyhahn/go-smc/pkg/sss"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSplit prints the share files written by a split.
func (p *Printer) PrintSplit(set sharefile.Set, algorithm string, paths []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"set_id":    set.ID.String(),
			"algorithm": algorithm,
			"threshold": set.Threshold,
			"total":     set.Total,
			"files":     paths,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Set %s: %s, %d of %d shares\n", set.ID, algorithm, set.Threshold, set.Total)
		for _, path := range paths {
			fmt.Fprintf(p.writer, "  - %s\n", path)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintReconstruction prints the rejected shares and warnings of r.
func (p *Printer) PrintReconstruction(r *sss.Reconstruction) error {
	switch p.format {
	case OutputFormatJSON:
		warnings := make([]map[string]string, len(r.Warnings))
		for i, w := range r.Warnings {
			warnings[i] = map[string]string{"code": string(w.Code), "message": w.Message}
		}
		return p.printJSON(map[string]any{
			"bytes":    len(r.Data),
			"rejected": r.Rejected,
			"warnings": warnings,
		})
	case OutputFormatText:
		if len(r.Rejected) > 0 {
			fmt.Fprintf(p.writer, "Rejected shares: %s\n", joinInts(r.Rejected))
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(p.writer, "Warning (%s): %s\n", w.Code, w.Message)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintVerify prints an information-checking report.
func (p *Printer) PrintVerify(set sharefile.Set, report *infocheck.Report) error {
	switch p.format {
	case OutputFormatJSON:
		accepts := make(map[string]int, len(report.IDs))
		for a, id := range report.IDs {
			accepts[fmt.Sprint(id)] = countTrue(report.Accept[a])
		}
		return p.printJSON(map[string]any{
			"set_id":    set.ID.String(),
			"checking":  set.Checking,
			"threshold": set.Threshold,
			"accepts":   accepts,
			"valid":     report.Valid,
			"rejected":  report.Rejected,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Set %s (%s, k=%d)\n", set.ID, set.Checking, set.Threshold)
		fmt.Fprintf(p.writer, "%-8s %-8s %s\n", "SHARE", "ACCEPTS", "VERIFIED BY")
		fmt.Fprintln(p.writer, strings.Repeat("-", 40))
		for a, id := range report.IDs {
			var by []int
			for b, ok := range report.Accept[a] {
				if ok {
					by = append(by, report.IDs[b])
				}
			}
			fmt.Fprintf(p.writer, "%-8d %-8d %s\n", id, len(by), joinInts(by))
		}
		fmt.Fprintf(p.writer, "Valid: %s\n", joinInts(report.Valid))
		if len(report.Rejected) > 0 {
			fmt.Fprintf(p.writer, "Rejected: %s\n", joinInts(report.Rejected))
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintTagLength prints a computed cevallos tag length.
func (p *Printer) PrintTagLength(threshold, messageBytes, securityBits, tagBytes int) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"threshold":     threshold,
			"message_bytes": messageBytes,
			"security_bits": securityBits,
			"tag_bytes":     tagBytes,
		})
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%d\n", tagBytes)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"status":  "success",
			"message": message,
		})
	case OutputFormatText:
		fmt.Fprintln(p.writer, message)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"status":     "error",
			"error":      err.Error(),
			"error_type": metrics.ErrorType(err),
			"retryable":  sss.IsRetryable(err),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data any) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

func countTrue(row []bool) int {
	n := 0
	for _, ok := range row {
		if ok {
			n++
		}
	}
	return n
}

func writeMetrics(path string, c *metrics.Collector) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	if err := c.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
