// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pipdeps/pipdeps/internal/httpx/httpxtest"
	"github.com/pipdeps/pipdeps/internal/semver"
	"github.com/pipdeps/pipdeps/pkg/archive"
	"github.com/pipdeps/pipdeps/pkg/archive/archivetest"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pipdeps/pipdeps/pkg/requirement"
)

const sixMetadata = `{"classifiers": [], "extensions": {}, "generator": "bdist_wheel (0.29.0)", "metadata_version": "2.0", "name": "six", "summary": "py2/3", "version": "1.11.0"}`

const requestsMetadata = `{"classifiers": [], "extensions": {}, "generator": "bdist_wheel (0.30.0)", "metadata_version": "2.0", "name": "requests", "summary": "http", "version": "2.18.4",
  "run_requires": [{"requires": ["chardet (>=3.0.2,<3.1.0)", "idna (>=2.5,<2.7)"]}, {"extra": "security", "requires": ["pyOpenSSL (>=0.14)"]}]}`

func artifactJSON(filename, kind string) string {
	return fmt.Sprintf(`{"filename": %q, "packagetype": %q, "url": "https://files.example/%s"}`, filename, kind, filename)
}

func projectJSON(name string, releases map[string][]string) string {
	var rs []string
	for tag, artifacts := range releases {
		rs = append(rs, fmt.Sprintf("%q: [%s]", tag, strings.Join(artifacts, ",")))
	}
	return fmt.Sprintf(`{"info": {"name": %q}, "releases": {%s}}`, name, strings.Join(rs, ","))
}

func mustBytes(t *testing.T) func([]byte, error) []byte {
	return func(b []byte, err error) []byte {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
}

func req(name string, cs ...string) requirement.Requirement {
	r := requirement.Requirement{Name: name}
	for _, c := range cs {
		r.Constraints = append(r.Constraints, semver.MustParseConstraint(c))
	}
	return r
}

func TestInspectorLatest(t *testing.T) {
	wheel := mustBytes(t)(archivetest.Wheel("requests", "2.18.4", requestsMetadata))
	mock := &httpxtest.MockClient{
		Calls: []httpxtest.Call{
			{Method: "GET", URL: "https://pypi.org/pypi/requests/json", Response: httpxtest.OK(projectJSON("requests", map[string][]string{
				"2.9.1":  {artifactJSON("requests-2.9.1.tar.gz", "sdist")},
				"2.18.4": {artifactJSON("requests-2.18.4.tar.gz", "sdist"), artifactJSON("requests-2.18.4-py2.py3-none-any.whl", "bdist_wheel")},
			}))},
			{Method: "GET", URL: "https://files.example/requests-2.18.4-py2.py3-none-any.whl", Response: httpxtest.Response(http.StatusOK, wheel)},
		},
		URLValidator: httpxtest.NewURLValidator(t),
	}
	in := &Inspector{Registry: &pypi.HTTPRegistry{Client: mock}}
	got, err := in.Latest(context.Background(), "requests")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	want := &Report{
		Package:    "requests",
		Version:    semver.Semver{Major: 2, Minor: 18, Patch: 4},
		RawVersion: "2.18.4",
		Artifact: pypi.Artifact{
			Filename:    "requests-2.18.4-py2.py3-none-any.whl",
			PackageType: pypi.WheelBinary,
			URL:         "https://files.example/requests-2.18.4-py2.py3-none-any.whl",
		},
		Requirements: []requirement.Requirement{
			req("chardet", ">=3.0.2", "<3.1.0"),
			req("idna", ">=2.5", "<2.7"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
	}
}

func TestInspectorVersion(t *testing.T) {
	sdist := mustBytes(t)(archivetest.Sdist("requests", "2.9.1", "six>=1.0\n[socks]\nPySocks\n"))
	project := projectJSON("requests", map[string][]string{
		"2.9.1":  {artifactJSON("requests-2.9.1.tar.gz", "sdist")},
		"2.18.4": {artifactJSON("requests-2.18.4-py2.py3-none-any.whl", "bdist_wheel")},
	})
	mock := &httpxtest.MockClient{
		Calls: []httpxtest.Call{
			{URL: "https://pypi.org/pypi/requests/json", Response: httpxtest.OK(project)},
			{URL: "https://files.example/requests-2.9.1.tar.gz", Response: httpxtest.Response(http.StatusOK, sdist)},
			{URL: "https://pypi.org/pypi/requests/json", Response: httpxtest.OK(project)},
		},
		URLValidator: httpxtest.NewURLValidator(t),
	}
	in := &Inspector{Registry: &pypi.HTTPRegistry{Client: mock}}
	got, err := in.Version(context.Background(), "requests", "2.9.1")
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if diff := cmp.Diff([]requirement.Requirement{req("six", ">=1.0")}, got.Requirements); diff != "" {
		t.Errorf("Requirements mismatch (-want +got):\n%s", diff)
	}
	_, err = in.Version(context.Background(), "requests", "3.0")
	if k := KindOf(err); k != KindVersionNotFound {
		t.Errorf("KindOf(%v) = %v, want %v", err, k, KindVersionNotFound)
	}
	_, err = in.Version(context.Background(), "requests", "trunk")
	if k := KindOf(err); k != KindNormalize {
		t.Errorf("KindOf(%v) = %v, want %v", err, k, KindNormalize)
	}
}

func TestInspectorFailures(t *testing.T) {
	corruptWheel := []byte("PK\x03\x04 definitely not a wheel")
	bareSdist := tgz(t, []archive.TarEntry{
		{Header: &tar.Header{Name: "pkg-1.0/setup.py"}, Body: []byte("setup()")},
		{Header: &tar.Header{Name: "pkg-1.0/pkg.egg-info/PKG-INFO"}, Body: []byte("Name: pkg")},
	})
	latin1Sdist := mustBytes(t)(archivetest.Sdist("pkg", "1.0", "ch\xffrdet<3.1\n"))
	unknownKey := mustBytes(t)(archivetest.Wheel("pkg", "1.0", `{"classifiers": [], "extensions": {}, "generator": "g", "metadata_version": "2.0", "name": "pkg", "summary": "s", "version": "1.0", "surprise": 1}`))
	for _, tc := range []struct {
		name      string
		calls     []httpxtest.Call
		wantStage Stage
		wantKind  Kind
	}{
		{
			name:      "registry unreachable",
			calls:     []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Error: errors.New("connection refused")}},
			wantStage: StageFetchMetadata,
			wantKind:  KindTransport,
		},
		{
			name:      "registry 404",
			calls:     []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.Response(http.StatusNotFound, nil)}},
			wantStage: StageFetchMetadata,
			wantKind:  KindTransport,
		},
		{
			name:      "bad registry document",
			calls:     []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(`{"releases": 7}`)}},
			wantStage: StageFetchMetadata,
			wantKind:  KindDecode,
		},
		{
			name:      "no versions",
			calls:     []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", nil))}},
			wantStage: StageComputeLatest,
			wantKind:  KindNoVersions,
		},
		{
			name:      "bad tag",
			calls:     []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{"nightly": nil}))}},
			wantStage: StageComputeLatest,
			wantKind:  KindNormalize,
		},
		{
			name: "only eggs",
			calls: []httpxtest.Call{{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
				"1.0": {artifactJSON("pkg-1.0-py2.7.egg", "bdist_egg")},
			}))}},
			wantStage: StageSelectArtifact,
			wantKind:  KindNoRelease,
		},
		{
			name: "corrupt wheel does not fall back",
			calls: []httpxtest.Call{
				{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
					"1.0": {artifactJSON("pkg-1.0.tar.gz", "sdist"), artifactJSON("pkg-1.0-py3-none-any.whl", "bdist_wheel")},
				}))},
				{URL: "https://files.example/pkg-1.0-py3-none-any.whl", Response: httpxtest.Response(http.StatusOK, corruptWheel)},
			},
			wantStage: StageInspectArchive,
			wantKind:  KindArchive,
		},
		{
			name: "sdist without requires.txt",
			calls: []httpxtest.Call{
				{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
					"1.0": {artifactJSON("pkg-1.0.tar.gz", "sdist")},
				}))},
				{URL: "https://files.example/pkg-1.0.tar.gz", Response: httpxtest.Response(http.StatusOK, bareSdist)},
			},
			wantStage: StageInspectArchive,
			wantKind:  KindFileNotFound,
		},
		{
			name: "wheel metadata drift",
			calls: []httpxtest.Call{
				{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
					"1.0": {artifactJSON("pkg-1.0-py3-none-any.whl", "bdist_wheel")},
				}))},
				{URL: "https://files.example/pkg-1.0-py3-none-any.whl", Response: httpxtest.Response(http.StatusOK, unknownKey)},
			},
			wantStage: StageExtractRequirements,
			wantKind:  KindDecode,
		},
		{
			name: "sdist requires.txt not utf-8",
			calls: []httpxtest.Call{
				{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
					"1.0": {artifactJSON("pkg-1.0.tar.gz", "sdist")},
				}))},
				{URL: "https://files.example/pkg-1.0.tar.gz", Response: httpxtest.Response(http.StatusOK, latin1Sdist)},
			},
			wantStage: StageExtractRequirements,
			wantKind:  KindDecode,
		},
		{
			name: "artifact download fails",
			calls: []httpxtest.Call{
				{URL: "https://pypi.org/pypi/pkg/json", Response: httpxtest.OK(projectJSON("pkg", map[string][]string{
					"1.0": {artifactJSON("pkg-1.0.tar.gz", "sdist")},
				}))},
				{URL: "https://files.example/pkg-1.0.tar.gz", Error: errors.New("reset by peer")},
			},
			wantStage: StageInspectArchive,
			wantKind:  KindTransport,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mock := &httpxtest.MockClient{Calls: tc.calls, URLValidator: httpxtest.NewURLValidator(t)}
			in := &Inspector{Registry: &pypi.HTTPRegistry{Client: mock}}
			_, err := in.Latest(context.Background(), "pkg")
			var ie *Error
			if !errors.As(err, &ie) {
				t.Fatalf("Latest() error = %v, want *Error", err)
			}
			if ie.Package != "pkg" {
				t.Errorf("Package = %q, want pkg", ie.Package)
			}
			if ie.Stage != tc.wantStage {
				t.Errorf("Stage = %q, want %q", ie.Stage, tc.wantStage)
			}
			if ie.Kind != tc.wantKind {
				t.Errorf("Kind = %v, want %v (err: %v)", ie.Kind, tc.wantKind, err)
			}
			if KindOf(err) != ie.Kind {
				t.Errorf("KindOf() = %v, want %v", KindOf(err), ie.Kind)
			}
			if mock.CallCount() != len(tc.calls) {
				t.Errorf("CallCount() = %d, want %d", mock.CallCount(), len(tc.calls))
			}
		})
	}
}

func TestArchiveExtractor(t *testing.T) {
	zipSdist := must(t)(archivetest.ZipFile([]archive.ZipEntry{
		{FileHeader: &zip.FileHeader{Name: "legacy-0.3/setup.py"}, Body: []byte("setup()")},
		{FileHeader: &zip.FileHeader{Name: "legacy-0.3/legacy.egg-info/requires.txt"}, Body: []byte("django<2\n[dev]\npytest\n")},
	}))
	for _, tc := range []struct {
		name     string
		artifact pypi.Artifact
		body     []byte
		want     []requirement.Requirement
		wantErr  error
	}{
		{
			name:     "zip sdist",
			artifact: pypi.Artifact{Filename: "legacy-0.3.zip", PackageType: pypi.SourceDist, URL: "https://files.example/legacy-0.3.zip"},
			body:     zipSdist,
			want:     []requirement.Requirement{req("django", "<2")},
		},
		{
			name:     "tar sdist",
			artifact: pypi.Artifact{Filename: "legacy-0.3.tar.gz", PackageType: pypi.SourceDist, URL: "https://files.example/legacy-0.3.tar.gz"},
			body:     mustBytes(t)(archivetest.Sdist("legacy", "0.3", "django<2\n")),
			want:     []requirement.Requirement{req("django", "<2")},
		},
		{
			name:     "invalid utf-8",
			artifact: pypi.Artifact{Filename: "p-1.0.tar.gz", PackageType: pypi.SourceDist, URL: "https://files.example/p-1.0.tar.gz"},
			body:     mustBytes(t)(archivetest.Sdist("p", "1.0", "ch\xffrdet<3.1\n")),
			wantErr:  &requirement.EncodingError{Offset: 2},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mock := &httpxtest.MockClient{
				Calls:        []httpxtest.Call{{URL: tc.artifact.URL, Response: httpxtest.Response(http.StatusOK, tc.body)}},
				URLValidator: httpxtest.NewURLValidator(t),
			}
			x := &ArchiveExtractor{Registry: &pypi.HTTPRegistry{Client: mock}}
			got, err := x.Extract(context.Background(), tc.artifact)
			if tc.wantErr != nil {
				var ee *requirement.EncodingError
				if !errors.As(err, &ee) {
					t.Fatalf("Extract() error = %v, want %v", err, tc.wantErr)
				}
				if diff := cmp.Diff(tc.wantErr, ee); diff != "" {
					t.Errorf("error mismatch (-want +got):\n%s", diff)
				}
				if got != nil {
					t.Errorf("Extract() = %v, want no requirements", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func must(t *testing.T) func(*bytes.Buffer, error) []byte {
	return func(b *bytes.Buffer, err error) []byte {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return b.Bytes()
	}
}

func tgz(t *testing.T, entries []archive.TarEntry) []byte {
	t.Helper()
	buf, err := archivetest.TgzFile(entries)
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
