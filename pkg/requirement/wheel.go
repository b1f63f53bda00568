// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package requirement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// WheelMetadata is the metadata.json document of a wheel's dist-info directory.
type WheelMetadata struct {
	Keywords        []string                   `json:"keywords"`
	Classifiers     []string                   `json:"classifiers"`
	Extensions      map[string]json.RawMessage `json:"extensions"`
	Extras          []string                   `json:"extras"`
	Generator       string                     `json:"generator"`
	License         *string                    `json:"license"`
	MetadataVersion string                     `json:"metadata_version"`
	Name            string                     `json:"name"`
	Requires        *string                    `json:"requires"`
	RunRequires     []RequiresGroup            `json:"run_requires"`
	TestRequires    []RequiresGroup            `json:"test_requires"`
	Summary         string                     `json:"summary"`
	Version         string                     `json:"version"`
	DownloadURL     *string                    `json:"download_url"`
	Platform        *string                    `json:"platform"`
	Provides        *string                    `json:"provides"`
}

// RequiresGroup is a set of requirements that apply under an optional extra and environment marker.
type RequiresGroup struct {
	Extra       *string  `json:"extra"`
	Environment *string  `json:"environment"`
	Requires    []string `json:"requires"`
}

// UnmarshalJSON requires the requires list to be present and non-null.
func (g *RequiresGroup) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := raw["requires"]; !ok {
		return &SchemaError{Reason: "requires group: missing field requires"}
	} else if isNull(v) {
		return &SchemaError{Reason: "requires group: null field requires"}
	}
	type plain RequiresGroup
	return json.Unmarshal(b, (*plain)(g))
}

// Unconditional reports whether the group applies to every installation.
func (g RequiresGroup) Unconditional() bool {
	return g.Extra == nil && g.Environment == nil
}

// SupportedMetadataVersion is the only metadata.json version understood.
const SupportedMetadataVersion = "2.0"

var (
	knownKeys = []string{
		"keywords", "classifiers", "extensions", "extras", "generator", "license",
		"metadata_version", "name", "requires", "run_requires", "test_requires",
		"summary", "version", "download_url", "platform", "provides",
	}
	requiredKeys = []string{
		"classifiers", "extensions", "generator", "metadata_version", "name", "summary", "version",
	}
	nullableKeys = []string{"license", "requires", "download_url", "platform", "provides"}
)

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// SchemaError is returned for a metadata document that does not match the expected schema.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid wheel metadata: %s: %v", e.Reason, e.Err)
	}
	return "invalid wheel metadata: " + e.Reason
}

func (e *SchemaError) Cause() error  { return e.Err }
func (e *SchemaError) Unwrap() error { return e.Err }

// DecodeWheelMetadata strictly decodes a metadata.json document.
// A single unknown top-level key rejects the whole document, as does a null
// value for any field other than the optional strings.
func DecodeWheelMetadata(r io.Reader) (*WheelMetadata, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading wheel metadata")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &SchemaError{Reason: "malformed json", Err: err}
	}
	if raw == nil {
		return nil, &SchemaError{Reason: "document is not an object"}
	}
	var unknown []string
	for k := range raw {
		if !slices.Contains(knownKeys, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &SchemaError{Reason: "unknown fields " + strings.Join(unknown, ", ")}
	}
	for _, k := range requiredKeys {
		if _, ok := raw[k]; !ok {
			return nil, &SchemaError{Reason: "missing field " + k}
		}
	}
	var nulls []string
	for k, v := range raw {
		if isNull(v) && !slices.Contains(nullableKeys, k) {
			nulls = append(nulls, k)
		}
	}
	if len(nulls) > 0 {
		sort.Strings(nulls)
		return nil, &SchemaError{Reason: "null fields " + strings.Join(nulls, ", ")}
	}
	var md WheelMetadata
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, &SchemaError{Reason: "field types", Err: err}
	}
	if md.MetadataVersion != SupportedMetadataVersion {
		return nil, &SchemaError{Reason: fmt.Sprintf("unsupported metadata_version %q", md.MetadataVersion)}
	}
	return &md, nil
}

// Requirements returns the unconditional runtime requirements in document order.
// Groups scoped to an extra or environment marker are skipped.
func (md *WheelMetadata) Requirements() ([]Requirement, error) {
	var reqs []Requirement
	for _, g := range md.RunRequires {
		if !g.Unconditional() {
			continue
		}
		for _, line := range g.Requires {
			r, err := ParseLine(line)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, r)
		}
	}
	return reqs, nil
}
