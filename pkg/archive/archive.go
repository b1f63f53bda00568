// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archive locates dependency metadata inside Python distribution archives.
package archive

import (
	"fmt"
	"strings"
)

// Format represents the archive types of packages.
type Format int

const (
	UnknownFormat Format = iota
	TarGzFormat
	ZipFormat
)

func (f Format) String() string {
	switch f {
	case TarGzFormat:
		return "tar.gz"
	case ZipFormat:
		return "zip"
	default:
		return "unknown"
	}
}

// FormatOf guesses the archive format of a distribution from its filename.
func FormatOf(filename string) Format {
	switch {
	case strings.HasSuffix(filename, ".whl"), strings.HasSuffix(filename, ".zip"):
		return ZipFormat
	case strings.HasSuffix(filename, ".tar.gz"), strings.HasSuffix(filename, ".tgz"):
		return TarGzFormat
	default:
		return UnknownFormat
	}
}

// Metadata file locations within distributions.
const (
	WheelMetadataSuffix = ".dist-info/metadata.json"
	RequiresTxtSuffix   = ".egg-info/requires.txt"
)

// FileNotFoundError is returned when no archive entry ends with the requested suffix.
type FileNotFoundError struct {
	Suffix string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("no file matching *%s in archive", e.Suffix)
}

// FormatError is returned when the archive stream is not a valid archive.
type FormatError struct {
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s archive: %v", e.Format, e.Err)
}

func (e *FormatError) Cause() error  { return e.Err }
func (e *FormatError) Unwrap() error { return e.Err }
