// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package semver

import (
	"fmt"
	"regexp"
	"strings"
)

// Op is a comparison operator of a Constraint.
type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpEqual        Op = "="
)

// ConstraintError is returned for a constraint that is not a known operator followed by a version.
type ConstraintError struct {
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("invalid version constraint %q", e.Constraint)
}

// Constraint is a single comparison against a partially specified version.
type Constraint struct {
	Op      Op
	Version Semver
	// Precision is the number of version components that were written (1-3).
	Precision int
}

var constraintRE = regexp.MustCompile(`^(<=|>=|==|<|>|=)(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

// ParseConstraint parses an operator immediately followed by a version, e.g. ">=3.0.2".
func ParseConstraint(s string) (Constraint, error) {
	m := constraintRE.FindStringSubmatch(s)
	if m == nil {
		return Constraint{}, &ConstraintError{Constraint: s}
	}
	op := Op(m[1])
	if op == "==" {
		op = OpEqual
	}
	c := Constraint{Op: op}
	var parts [3]int
	for i, p := range m[2:] {
		if p == "" {
			break
		}
		n, err := component(p)
		if err != nil {
			return Constraint{}, &ConstraintError{Constraint: s}
		}
		parts[i] = n
		c.Precision++
	}
	c.Version = Semver{Major: parts[0], Minor: parts[1], Patch: parts[2]}
	return c, nil
}

// MustParseConstraint is like ParseConstraint but panics on error.
func MustParseConstraint(s string) Constraint {
	c, err := ParseConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the constraint as "<op> <version>" using the written precision.
func (c Constraint) String() string {
	parts := []int{c.Version.Major, c.Version.Minor, c.Version.Patch}[:max(c.Precision, 1)]
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	return string(c.Op) + " " + strings.Join(strs, ".")
}
