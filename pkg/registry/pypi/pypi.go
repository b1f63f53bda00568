// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package pypi describes the PyPi registry interface.
package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pipdeps/pipdeps/internal/httpx"
	"github.com/pkg/errors"
)

// DefaultURL is the public PyPI instance.
var DefaultURL = &url.URL{Scheme: "https", Host: "pypi.org"}

// Project describes a single PyPi project with multiple releases.
type Project struct {
	Info     `json:"info"`
	Releases map[string][]Artifact `json:"releases"`
}

// Info about a project.
type Info struct {
	Name        string            `json:"name"`
	Summary     string            `json:"summary"`
	Version     string            `json:"version"`
	Homepage    string            `json:"home_page"`
	ProjectURLs map[string]string `json:"project_urls"`
}

// PackageType is the kind of distributable an Artifact is.
type PackageType string

const (
	SourceDist    PackageType = "sdist"
	DumbBinary    PackageType = "bdist_dumb"
	EggBinary     PackageType = "bdist_egg"
	WheelBinary   PackageType = "bdist_wheel"
	WininstBinary PackageType = "bdist_wininst"
)

// UnmarshalJSON rejects package types outside of the known set.
func (t *PackageType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch pt := PackageType(s); pt {
	case SourceDist, DumbBinary, EggBinary, WheelBinary, WininstBinary:
		*t = pt
		return nil
	default:
		return errors.Errorf("unknown package type %q", s)
	}
}

// An Artifact is one out of the multiple files that can be included in a release.
//
// PyPi might refer to this object as a "package" which is why it has a PackageType.
type Artifact struct {
	HasSig        bool        `json:"has_sig"`
	UploadTime    string      `json:"upload_time"`
	CommentText   string      `json:"comment_text"`
	PythonVersion string      `json:"python_version"`
	URL           string      `json:"url"`
	MD5Digest     string      `json:"md5_digest"`
	Downloads     int64       `json:"downloads"`
	Filename      string      `json:"filename"`
	PackageType   PackageType `json:"packagetype"`
	Path          string      `json:"path"`
	Size          int64       `json:"size"`
}

// StatusError is returned when the registry responds with a non-200 status.
type StatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// DecodeError is returned when a registry response is not a valid project document.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding project: " + e.Err.Error() }
func (e *DecodeError) Cause() error  { return e.Err }
func (e *DecodeError) Unwrap() error { return e.Err }

// Registry is an PyPI package registry.
type Registry interface {
	Project(context.Context, string) (*Project, error)
	Artifact(context.Context, Artifact) (io.ReadCloser, error)
}

// HTTPRegistry is a Registry implementation that uses the pypi.org HTTP API.
type HTTPRegistry struct {
	Client httpx.BasicClient
	// BaseURL overrides DefaultURL when set.
	BaseURL *url.URL
}

func (r HTTPRegistry) base() *url.URL {
	if r.BaseURL != nil {
		return r.BaseURL
	}
	return DefaultURL
}

func (r HTTPRegistry) get(ctx context.Context, u string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &StatusError{URL: u, Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// Project provides all API information related to the given package.
func (r HTTPRegistry) Project(ctx context.Context, pkg string) (*Project, error) {
	if pkg == "" || strings.ContainsAny(pkg, "/?#") {
		return nil, errors.Errorf("invalid package name %q", pkg)
	}
	body, err := r.get(ctx, r.base().JoinPath("pypi", pkg, "json").String())
	if err != nil {
		return nil, errors.Wrap(err, "fetching project")
	}
	defer body.Close()
	var p Project
	if err := json.NewDecoder(body).Decode(&p); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &p, nil
}

// Artifact opens the download stream of the given artifact. The caller must close it.
func (r HTTPRegistry) Artifact(ctx context.Context, a Artifact) (io.ReadCloser, error) {
	if a.URL == "" {
		return nil, errors.Errorf("artifact %s has no download URL", a.Filename)
	}
	body, err := r.get(ctx, a.URL)
	if err != nil {
		return nil, errors.Wrap(err, "fetching artifact")
	}
	return body, nil
}

var _ Registry = &HTTPRegistry{}
