// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"

	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pipdeps/pipdeps/pkg/requirement"
)

// SelectionOrder lists the artifact kinds that can be inspected, most preferred first.
var SelectionOrder = []pypi.PackageType{pypi.WheelBinary, pypi.SourceDist}

// NoReleaseForVersionError is returned when a version has no artifact of a selectable kind.
type NoReleaseForVersionError struct {
	Package string
	Version semver.Semver
}

func (e *NoReleaseForVersionError) Error() string {
	return fmt.Sprintf("%s %s has no wheel or source distribution", e.Package, e.Version)
}

// Select picks the artifact of v to inspect: the first artifact of the first
// kind in SelectionOrder that v provides.
func Select(idx *Index, v semver.Semver) (pypi.Artifact, error) {
	artifacts, err := idx.Artifacts(v)
	if err != nil {
		return pypi.Artifact{}, err
	}
	for _, kind := range SelectionOrder {
		for _, a := range artifacts {
			if a.PackageType == kind {
				return a, nil
			}
		}
	}
	return pypi.Artifact{}, &NoReleaseForVersionError{Package: idx.Package, Version: v}
}

// Extractor reads the requirements declared by an artifact.
type Extractor interface {
	Extract(context.Context, pypi.Artifact) ([]requirement.Requirement, error)
}

// SelectAndExtract selects the artifact of v and extracts its requirements.
// A failure of the selected artifact is final: other kinds are not tried.
func SelectAndExtract(ctx context.Context, idx *Index, v semver.Semver, ex Extractor) (pypi.Artifact, []requirement.Requirement, error) {
	a, err := Select(idx, v)
	if err != nil {
		return pypi.Artifact{}, nil, err
	}
	reqs, err := ex.Extract(ctx, a)
	if err != nil {
		return a, nil, err
	}
	return a, reqs, nil
}
