// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cli provides utilities for building CLI commands using the act framework.
package cli

import (
	"io"

	"github.com/fatih/color"
)

// IO provides input/output streams for CLI commands.
type IO struct {
	In  io.Reader // stdin
	Out io.Writer // stdout
	Err io.Writer // stderr
}

var (
	failure = color.New(color.FgRed)
	accent  = color.New(color.FgGreen).SprintFunc()
)

// Failf writes a highlighted failure line to Err.
func (cio IO) Failf(format string, args ...any) {
	failure.Fprintf(cio.Err, format+"\n", args...)
}

// Accent highlights a value in regular output.
func Accent(v any) string {
	return accent(v)
}
