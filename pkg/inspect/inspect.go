// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package inspect answers which packages a release of a PyPI project requires at runtime.
package inspect

import (
	"bytes"
	"context"
	"log"

	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pipdeps/pipdeps/pkg/archive"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pipdeps/pipdeps/pkg/release"
	"github.com/pipdeps/pipdeps/pkg/requirement"
	"github.com/pkg/errors"
)

// Report is the outcome of inspecting one release.
type Report struct {
	Package      string
	Version      semver.Semver
	RawVersion   string
	Artifact     pypi.Artifact
	Requirements []requirement.Requirement
}

// Inspector resolves releases against a registry and reads their requirements.
type Inspector struct {
	Registry pypi.Registry
}

// Latest inspects the greatest published version of pkg.
func (in *Inspector) Latest(ctx context.Context, pkg string) (*Report, error) {
	return in.inspect(ctx, pkg, StageComputeLatest, func(idx *release.Index) (semver.Semver, error) {
		return idx.Latest()
	})
}

// Version inspects the release of pkg whose tag coerces to the same version as raw.
func (in *Inspector) Version(ctx context.Context, pkg, raw string) (*Report, error) {
	want, err := semver.Coerce(raw)
	if err != nil {
		return nil, newError(pkg, StageResolveVersion, "", err, KindNormalize)
	}
	return in.inspect(ctx, pkg, StageResolveVersion, func(idx *release.Index) (semver.Semver, error) {
		if _, err := idx.Artifacts(want); err != nil {
			return semver.Semver{}, err
		}
		return want, nil
	})
}

func (in *Inspector) inspect(ctx context.Context, pkg string, resolve Stage, pick func(*release.Index) (semver.Semver, error)) (*Report, error) {
	log.Printf("Fetching project %s", pkg)
	p, err := in.Registry.Project(ctx, pkg)
	if err != nil {
		return nil, newError(pkg, StageFetchMetadata, "", err, KindTransport)
	}
	idx, err := release.NewIndex(p)
	if err != nil {
		return nil, newError(pkg, resolve, "", err, KindUnknown)
	}
	if idx.Package == "" {
		idx.Package = pkg
	}
	v, err := pick(idx)
	if err != nil {
		return nil, newError(pkg, resolve, "", err, KindUnknown)
	}
	raw, _ := idx.RawTag(v)
	a, reqs, err := release.SelectAndExtract(ctx, idx, v, &ArchiveExtractor{Registry: in.Registry})
	if err != nil {
		var ie *Error
		if errors.As(err, &ie) {
			ie.Package = pkg
			return nil, ie
		}
		return nil, newError(pkg, StageSelectArtifact, a.Filename, err, KindUnknown)
	}
	return &Report{Package: pkg, Version: v, RawVersion: raw, Artifact: a, Requirements: reqs}, nil
}

// ArchiveExtractor downloads an artifact and parses the dependency document inside it.
type ArchiveExtractor struct {
	Registry pypi.Registry
}

var _ release.Extractor = &ArchiveExtractor{}

// Extract reads the requirements of a wheel or source distribution.
// Failures are returned as *Error naming the stage and the artifact.
func (x *ArchiveExtractor) Extract(ctx context.Context, a pypi.Artifact) ([]requirement.Requirement, error) {
	fail := func(stage Stage, err error, fallback Kind) error {
		return newError("", stage, a.Filename, err, fallback)
	}
	var format archive.Format
	var suffix string
	switch a.PackageType {
	case pypi.WheelBinary:
		format, suffix = archive.ZipFormat, archive.WheelMetadataSuffix
	case pypi.SourceDist:
		format, suffix = archive.TarGzFormat, archive.RequiresTxtSuffix
	default:
		return nil, fail(StageSelectArtifact, errors.Errorf("cannot inspect %s artifacts", a.PackageType), KindNoRelease)
	}
	// Older sdists were uploaded as zip files.
	if f := archive.FormatOf(a.Filename); f != archive.UnknownFormat {
		format = f
	}
	find := archive.FindInTarGz
	if format == archive.ZipFormat {
		find = archive.FindInZip
	}
	log.Printf("Inspecting %s (%s)", a.Filename, format)
	rc, err := x.Registry.Artifact(ctx, a)
	if err != nil {
		return nil, fail(StageInspectArchive, err, KindTransport)
	}
	content, err := find(rc, suffix)
	if err != nil {
		return nil, fail(StageInspectArchive, err, KindArchive)
	}
	var reqs []requirement.Requirement
	if a.PackageType == pypi.WheelBinary {
		var md *requirement.WheelMetadata
		md, err = requirement.DecodeWheelMetadata(bytes.NewReader(content))
		if err == nil {
			reqs, err = md.Requirements()
		}
	} else {
		reqs, err = requirement.DecodeRequiresTxt(bytes.NewReader(content))
	}
	if err != nil {
		return nil, fail(StageExtractRequirements, err, KindUnknown)
	}
	return reqs, nil
}
