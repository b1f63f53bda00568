// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NormalizeError is returned when a version string has no leading numeric component.
type NormalizeError struct {
	Raw string
	Err error
}

func (e *NormalizeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot normalize version %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("cannot normalize version %q", e.Raw)
}

func (e *NormalizeError) Cause() error  { return e.Err }
func (e *NormalizeError) Unwrap() error { return e.Err }

// Anything after the third numeric component is discarded.
var looseRE = regexp.MustCompile(`^(\d+)\.?(\d+)?\.?(\d+)?(.*)$`)

// Coerce converts an arbitrary registry version tag into a three component Semver.
//
// Strictly valid semver is used as-is, minus any prerelease or build metadata.
// Otherwise up to three leading dot-separated numeric components are read,
// each missing component defaulting to zero. Coercion is lossy: "1.0",
// "1.0.0" and "1.0.0rc1" all produce 1.0.0.
func Coerce(raw string) (Semver, error) {
	if v, err := New(raw); err == nil {
		return v.Core(), nil
	}
	m := looseRE.FindStringSubmatch(raw)
	if m == nil {
		return Semver{}, &NormalizeError{Raw: raw}
	}
	var parts [3]int
	for i := range parts {
		n, err := component(m[i+1])
		if err != nil {
			return Semver{}, &NormalizeError{Raw: raw, Err: err}
		}
		parts[i] = n
	}
	return Semver{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

func component(s string) (int, error) {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
