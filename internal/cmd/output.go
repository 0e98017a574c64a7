// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dotandev/suigaspool/internal/errors"
	"github.com/dotandev/suigaspool/internal/metrics"
	"github.com/fatih/color"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	errColor   = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
	dimColor   = color.New(color.Faint)
)

func validateOutput(format string) error {
	switch format {
	case outputText, outputJSON:
		return nil
	default:
		return errors.WrapValidationError(fmt.Sprintf("--output must be %q or %q, got %q", outputText, outputJSON, format))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// field prints an aligned "label: value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelColor.Sprintf("%-15s", label+":"), value)
}

func success(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", okColor.Sprint("✓"), fmt.Sprintf(format, a...))
}

// PrintError renders a command failure for the terminal.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errColor.Sprint("Error:"), err)
}

func printMetrics(w io.Writer, summary []metrics.Summary) {
	if len(summary) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, dimColor.Sprint("METHOD\tOUTCOME\tCALLS"))
	for _, s := range summary {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\n", s.Method, s.Outcome, s.Count)
	}
	tw.Flush()
}
