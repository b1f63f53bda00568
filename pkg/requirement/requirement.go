// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package requirement parses the runtime requirements declared by Python distributions.
package requirement

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pkg/errors"
)

// Requirement is a dependency on Name satisfying all of Constraints.
type Requirement struct {
	Name        string
	Constraints []semver.Constraint
}

// String renders the requirement as "name (c1, c2)".
func (r Requirement) String() string {
	cs := make([]string, len(r.Constraints))
	for i, c := range r.Constraints {
		cs[i] = c.String()
	}
	return fmt.Sprintf("%s (%s)", r.Name, strings.Join(cs, ", "))
}

// Format renders one requirement per line.
func Format(reqs []Requirement) string {
	var b strings.Builder
	for _, r := range reqs {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// NameError is returned for a requirement line without a package name.
type NameError struct {
	Line string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("no package name in requirement %q", e.Line)
}

// EncodingError is returned for a requires.txt that is not valid UTF-8.
type EncodingError struct {
	// Offset is the position of the first invalid byte.
	Offset int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("requires.txt is not valid UTF-8 (offset %d)", e.Offset)
}

var (
	nameRE       = regexp.MustCompile(`\w+`)
	constraintRE = regexp.MustCompile(`[<=>]{1,2}\d+(\.\d+){0,2}`)
)

// ParseLine parses a single requirement such as "chardet>=3.0.2,<3.1.0".
//
// The name is the first run of word characters. Every operator-version
// substring is then read as a constraint, left to right. Text matching
// neither, such as extras or environment markers, is ignored.
func ParseLine(line string) (Requirement, error) {
	name := nameRE.FindString(line)
	if name == "" {
		return Requirement{}, &NameError{Line: line}
	}
	r := Requirement{Name: name}
	for _, m := range constraintRE.FindAllString(line, -1) {
		c, err := semver.ParseConstraint(m)
		if err != nil {
			return Requirement{}, errors.Wrapf(err, "parsing %q", line)
		}
		r.Constraints = append(r.Constraints, c)
	}
	return r, nil
}

// ParseRequiresTxt parses the unconditional part of an egg-info requires.txt.
// Parsing stops at the first section header such as "[security]".
func ParseRequiresTxt(text string) ([]Requirement, error) {
	var reqs []Requirement
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			break
		}
		r, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// DecodeRequiresTxt reads a requires.txt as UTF-8 text and parses it with ParseRequiresTxt.
func DecodeRequiresTxt(r io.Reader) ([]Requirement, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading requires.txt")
	}
	if !utf8.Valid(b) {
		return nil, &EncodingError{Offset: invalidOffset(b)}
	}
	return ParseRequiresTxt(string(b))
}

func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
