// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dotandev/suigaspool/internal/cmd"
)

// Build-time variables injected via -ldflags.
var (
	version   = "dev"
	commitSHA = "unknown"
)

func main() {
	cmd.Version = fmt.Sprintf("%s (%s)", version, commitSHA)
	os.Exit(run(cmd.Execute, os.Stderr))
}

// run executes fn and maps its error to a process exit code.
func run(fn func() error, stderr io.Writer) int {
	err := fn()
	switch {
	case err == nil:
		return 0
	case cmd.IsInterrupted(err):
		fmt.Fprintln(stderr, "Interrupted. Shutting down...")
		return cmd.InterruptExitCode
	default:
		cmd.PrintError(stderr, err)
		return 1
	}
}
