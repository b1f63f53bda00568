// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads Pipenv project manifests and lockfiles.
package manifest

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Pipfile is a Pipenv project manifest.
type Pipfile struct {
	Sources     []Source
	Requires    map[string]string
	Packages    map[string]PackageSpec
	DevPackages map[string]PackageSpec
}

// Source is a package index the project installs from.
type Source struct {
	Name      string `toml:"name" json:"name"`
	URL       string `toml:"url" json:"url"`
	VerifySSL bool   `toml:"verify_ssl" json:"verify_ssl"`
}

// PackageSpec is a single Pipfile dependency, written either as a version
// string or as an inline table.
type PackageSpec struct {
	Version  string
	Git      string
	Ref      string
	Path     string
	Index    string
	Markers  string
	Editable bool
	Extras   []string
}

type rawPipfile struct {
	Source      []Source          `toml:"source"`
	Requires    map[string]string `toml:"requires"`
	Packages    map[string]any    `toml:"packages"`
	DevPackages map[string]any    `toml:"dev-packages"`
}

// PipfileError is returned for a Pipfile entry of an unexpected shape.
type PipfileError struct {
	Section string
	Package string
	Reason  string
}

func (e *PipfileError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Section, e.Package, e.Reason)
}

// ParsePipfile decodes a Pipfile document.
func ParsePipfile(r io.Reader) (*Pipfile, error) {
	var raw rawPipfile
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding Pipfile")
	}
	packages, err := packageSpecs("packages", raw.Packages)
	if err != nil {
		return nil, err
	}
	dev, err := packageSpecs("dev-packages", raw.DevPackages)
	if err != nil {
		return nil, err
	}
	return &Pipfile{Sources: raw.Source, Requires: raw.Requires, Packages: packages, DevPackages: dev}, nil
}

// ReadPipfile reads and decodes the Pipfile at path.
func ReadPipfile(fs billy.Filesystem, path string) (*Pipfile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening Pipfile")
	}
	defer f.Close()
	return ParsePipfile(f)
}

func packageSpecs(section string, raw map[string]any) (map[string]PackageSpec, error) {
	specs := make(map[string]PackageSpec, len(raw))
	for name, v := range raw {
		spec, err := packageSpec(v)
		if err != nil {
			return nil, &PipfileError{Section: section, Package: name, Reason: err.Error()}
		}
		specs[name] = spec
	}
	return specs, nil
}

func packageSpec(v any) (PackageSpec, error) {
	switch v := v.(type) {
	case string:
		return PackageSpec{Version: v}, nil
	case map[string]any:
		var p PackageSpec
		for k, val := range v {
			var err error
			switch k {
			case "version":
				p.Version, err = asString(k, val)
			case "git":
				p.Git, err = asString(k, val)
			case "ref":
				p.Ref, err = asString(k, val)
			case "path":
				p.Path, err = asString(k, val)
			case "index":
				p.Index, err = asString(k, val)
			case "markers":
				p.Markers, err = asString(k, val)
			case "editable":
				b, ok := val.(bool)
				if !ok {
					err = errors.Errorf("%s must be a boolean", k)
				}
				p.Editable = b
			case "extras":
				p.Extras, err = asStrings(k, val)
			}
			if err != nil {
				return PackageSpec{}, err
			}
		}
		if p.Git != "" && p.Ref == "" {
			return PackageSpec{}, errors.New("git dependency without ref")
		}
		return p, nil
	default:
		return PackageSpec{}, errors.Errorf("unexpected value of type %T", v)
	}
}

func asString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("%s must be a string", key)
	}
	return s, nil
}

func asStrings(key string, v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, errors.Errorf("%s must be an array", key)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("%s must contain strings", key)
		}
		out[i] = s
	}
	return out, nil
}

// Names returns the sorted names of the default packages, followed by the
// sorted dev packages when dev is set. Names present in both are listed once.
func (p *Pipfile) Names(dev bool) []string {
	names := sortedKeys(p.Packages)
	if dev {
		for _, n := range sortedKeys(p.DevPackages) {
			if _, ok := p.Packages[n]; !ok {
				names = append(names, n)
			}
		}
	}
	return names
}

func sortedKeys(m map[string]PackageSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
