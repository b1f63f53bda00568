// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"fmt"
	"net/url"

	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pipdeps/pipdeps/pkg/archive"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pipdeps/pipdeps/pkg/release"
	"github.com/pipdeps/pipdeps/pkg/requirement"
	"github.com/pkg/errors"
)

// Stage is a step of an inspection.
type Stage string

const (
	StageFetchMetadata       Stage = "fetch metadata"
	StageComputeLatest       Stage = "compute latest"
	StageResolveVersion      Stage = "resolve version"
	StageSelectArtifact      Stage = "select artifact"
	StageInspectArchive      Stage = "inspect archive"
	StageExtractRequirements Stage = "extract requirements"
)

// Kind classifies an inspection failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindDecode
	KindArchive
	KindPackageName
	KindFileNotFound
	KindVersionNotFound
	KindNoRelease
	KindNoVersions
	KindNormalize
	KindConstraint
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindTransport:       "transport",
	KindDecode:          "decode",
	KindArchive:         "archive",
	KindPackageName:     "package name",
	KindFileNotFound:    "file not found",
	KindVersionNotFound: "version not found",
	KindNoRelease:       "no release",
	KindNoVersions:      "no versions",
	KindNormalize:       "normalize",
	KindConstraint:      "constraint",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error reports the stage at which inspecting Package failed.
type Error struct {
	Package  string
	Stage    Stage
	Kind     Kind
	// Artifact is the filename of the selected artifact, once known.
	Artifact string
	Err      error
}

func (e *Error) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Package, e.Stage, e.Artifact, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Package, e.Stage, e.Err)
}

func (e *Error) Cause() error  { return e.Err }
func (e *Error) Unwrap() error { return e.Err }

// newError classifies err, using fallback when no typed error is found in its chain.
func newError(pkg string, stage Stage, artifact string, err error, fallback Kind) *Error {
	k := KindOf(err)
	if k == KindUnknown {
		k = fallback
	}
	return &Error{Package: pkg, Stage: stage, Kind: k, Artifact: artifact, Err: err}
}

// KindOf classifies err by the most specific typed error in its chain.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	var (
		decode     *pypi.DecodeError
		schema     *requirement.SchemaError
		encoding   *requirement.EncodingError
		format     *archive.FormatError
		name       *requirement.NameError
		notFound   *archive.FileNotFoundError
		noVersion  *release.VersionNotFoundError
		noRelease  *release.NoReleaseForVersionError
		noVersions *release.NoReleasedVersionsError
		normalize  *semver.NormalizeError
		constraint *semver.ConstraintError
		status     *pypi.StatusError
		urlErr     *url.Error
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &decode), errors.As(err, &schema), errors.As(err, &encoding):
		return KindDecode
	case errors.As(err, &format):
		return KindArchive
	case errors.As(err, &name):
		return KindPackageName
	case errors.As(err, &notFound):
		return KindFileNotFound
	case errors.As(err, &noVersion):
		return KindVersionNotFound
	case errors.As(err, &noRelease):
		return KindNoRelease
	case errors.As(err, &noVersions):
		return KindNoVersions
	case errors.As(err, &normalize):
		return KindNormalize
	case errors.As(err, &constraint):
		return KindConstraint
	case errors.As(err, &status), errors.As(err, &urlErr):
		return KindTransport
	default:
		return KindUnknown
	}
}
