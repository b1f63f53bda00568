// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package release resolves a project's published versions and picks the artifact to inspect.
package release

import (
	"fmt"
	"log"
	"slices"
	"sort"

	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pkg/errors"
)

// NoReleasedVersionsError is returned for a project with no published versions.
type NoReleasedVersionsError struct {
	Package string
}

func (e *NoReleasedVersionsError) Error() string {
	return fmt.Sprintf("%s has no released versions", e.Package)
}

// VersionNotFoundError is returned when a version is absent from the index.
type VersionNotFoundError struct {
	Package string
	Version semver.Semver
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("%s has no version %s", e.Package, e.Version)
}

// Shadowed is a raw tag whose coerced version was claimed by another tag.
type Shadowed struct {
	RawTag  string
	Version semver.Semver
	Winner  string
}

type entry struct {
	raw       string
	artifacts []pypi.Artifact
}

// Index maps normalized versions to the artifacts published under them.
type Index struct {
	Package  string
	entries  map[semver.Semver]entry
	shadowed []Shadowed
}

// NewIndex coerces every version tag of p. The first tag that cannot be
// coerced aborts construction.
//
// When several tags coerce to the same version, the byte-wise smallest tag
// owns it and the rest are recorded as shadowed.
func NewIndex(p *pypi.Project) (*Index, error) {
	idx := &Index{Package: p.Name, entries: make(map[semver.Semver]entry, len(p.Releases))}
	tags := make([]string, 0, len(p.Releases))
	for tag := range p.Releases {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		v, err := semver.Coerce(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "indexing %s", p.Name)
		}
		if prev, ok := idx.entries[v]; ok {
			log.Printf("%s: version tag %q shadowed by %q (both %s)", p.Name, tag, prev.raw, v)
			idx.shadowed = append(idx.shadowed, Shadowed{RawTag: tag, Version: v, Winner: prev.raw})
			continue
		}
		idx.entries[v] = entry{raw: tag, artifacts: p.Releases[tag]}
	}
	return idx, nil
}

// Latest returns the greatest version in the index.
func (idx *Index) Latest() (semver.Semver, error) {
	vs := idx.Versions()
	if len(vs) == 0 {
		return semver.Semver{}, &NoReleasedVersionsError{Package: idx.Package}
	}
	return vs[len(vs)-1], nil
}

// Artifacts returns the artifacts of v in registry order.
func (idx *Index) Artifacts(v semver.Semver) ([]pypi.Artifact, error) {
	e, ok := idx.entries[v]
	if !ok {
		return nil, &VersionNotFoundError{Package: idx.Package, Version: v}
	}
	return e.artifacts, nil
}

// RawTag returns the registry tag that v was coerced from.
func (idx *Index) RawTag(v semver.Semver) (string, bool) {
	e, ok := idx.entries[v]
	return e.raw, ok
}

// Versions returns all indexed versions in ascending order.
func (idx *Index) Versions() []semver.Semver {
	vs := make([]semver.Semver, 0, len(idx.entries))
	for v := range idx.entries {
		vs = append(vs, v)
	}
	slices.SortFunc(vs, semver.Semver.Compare)
	return vs
}

// Shadowed returns the tags dropped by version collisions, ordered by tag.
func (idx *Index) Shadowed() []Shadowed {
	return slices.Clone(idx.shadowed)
}
