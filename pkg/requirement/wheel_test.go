// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package requirement

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const requestsMetadata = `{
  "classifiers": ["Programming Language :: Python"],
  "extensions": {"python.details": {"project_urls": {"Home": "http://python-requests.org"}}},
  "extras": ["security", "socks"],
  "generator": "bdist_wheel (0.30.0)",
  "license": "Apache 2.0",
  "metadata_version": "2.0",
  "name": "requests",
  "run_requires": [
    {"requires": ["chardet (>=3.0.2,<3.1.0)", "idna (>=2.5,<2.7)", "certifi (>=2017.4.17)"]},
    {"extra": "security", "requires": ["pyOpenSSL (>=0.14)"]},
    {"environment": "sys_platform == \"win32\" and (python_version == \"2.7\" or python_version == \"2.6\")", "requires": ["win_inet_pton"]},
    {"requires": ["urllib3 (<1.23,>=1.21.1)"]}
  ],
  "summary": "Python HTTP for Humans.",
  "version": "2.18.4"
}`

func TestDecodeWheelMetadata(t *testing.T) {
	md, err := DecodeWheelMetadata(strings.NewReader(requestsMetadata))
	if err != nil {
		t.Fatalf("DecodeWheelMetadata() error = %v", err)
	}
	if md.Name != "requests" || md.Version != "2.18.4" {
		t.Errorf("identity = %s %s", md.Name, md.Version)
	}
	got, err := md.Requirements()
	if err != nil {
		t.Fatalf("Requirements() error = %v", err)
	}
	want := []Requirement{
		req("chardet", ">=3.0.2", "<3.1.0"),
		req("idna", ">=2.5", "<2.7"),
		req("certifi", ">=2017.4.17"),
		req("urllib3", "<1.23", ">=1.21.1"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Requirements() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeWheelMetadataNoRunRequires(t *testing.T) {
	doc := `{"classifiers": [], "extensions": {}, "generator": "g", "metadata_version": "2.0", "name": "six", "summary": "s", "version": "1.11.0"}`
	md, err := DecodeWheelMetadata(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeWheelMetadata() error = %v", err)
	}
	got, err := md.Requirements()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Requirements() = %v, want none", got)
	}
}

func TestDecodeWheelMetadataRejects(t *testing.T) {
	base := `"classifiers": [], "extensions": {}, "generator": "g", "name": "six", "summary": "s", "version": "1.0"`
	for _, tc := range []struct {
		name string
		doc  string
	}{
		{name: "unknown key", doc: `{` + base + `, "metadata_version": "2.0", "requires_dist": []}`},
		{name: "missing required", doc: `{"classifiers": [], "extensions": {}, "metadata_version": "2.0", "name": "six", "summary": "s", "version": "1.0"}`},
		{name: "wrong metadata version", doc: `{` + base + `, "metadata_version": "2.1"}`},
		{name: "wrong type", doc: `{` + base + `, "metadata_version": "2.0", "run_requires": "six"}`},
		{name: "null required string", doc: `{"classifiers": [], "extensions": {}, "generator": "g", "metadata_version": "2.0", "name": null, "summary": "s", "version": "1.0"}`},
		{name: "null list", doc: `{` + base + `, "metadata_version": "2.0", "run_requires": null}`},
		{name: "group without requires", doc: `{` + base + `, "metadata_version": "2.0", "run_requires": [{"extra": "socks"}]}`},
		{name: "group with null requires", doc: `{` + base + `, "metadata_version": "2.0", "run_requires": [{"requires": null}]}`},
		{name: "not an object", doc: `null`},
		{name: "malformed", doc: `{`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeWheelMetadata(strings.NewReader(tc.doc))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want SchemaError", err)
			}
		})
	}
}

func TestDecodeWheelMetadataNullableFields(t *testing.T) {
	doc := `{"classifiers": [], "extensions": {}, "generator": "g", "metadata_version": "2.0", "name": "six", "summary": "s", "version": "1.0",
	  "license": null, "requires": null, "download_url": null, "platform": null, "provides": null,
	  "run_requires": [{"extra": null, "environment": null, "requires": ["idna (<2.7)"]}]}`
	md, err := DecodeWheelMetadata(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeWheelMetadata() error = %v", err)
	}
	if md.License != nil {
		t.Errorf("License = %q, want nil", *md.License)
	}
	got, err := md.Requirements()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Requirement{req("idna", "<2.7")}, got); diff != "" {
		t.Errorf("Requirements() mismatch (-want +got):\n%s", diff)
	}
}

func TestRequirementsFailsWhole(t *testing.T) {
	doc := `{"classifiers": [], "extensions": {}, "generator": "g", "metadata_version": "2.0", "name": "x", "summary": "s", "version": "1.0",
	  "run_requires": [{"requires": ["six (>=1.0)", "(=<2)"]}]}`
	md, err := DecodeWheelMetadata(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := md.Requirements(); err == nil {
		t.Error("Requirements() succeeded, want error")
	}
}
