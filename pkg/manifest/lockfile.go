// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/pkg/errors"
)

// Lockfile is a Pipfile.lock document.
type Lockfile struct {
	Meta    LockMeta                 `json:"_meta"`
	Default map[string]LockedPackage `json:"default"`
	Develop map[string]LockedPackage `json:"develop"`
}

// LockMeta describes the Pipfile a lockfile was produced from.
type LockMeta struct {
	Hash        LockHash          `json:"hash"`
	PipfileSpec int               `json:"pipfile-spec"`
	Requires    map[string]string `json:"requires"`
	Sources     []Source          `json:"sources"`
}

// LockHash is the digest of the Pipfile contents.
type LockHash struct {
	SHA256 string `json:"sha256"`
}

// LockedPackage is a pinned dependency.
type LockedPackage struct {
	Version  string   `json:"version,omitempty"`
	Hashes   []string `json:"hashes,omitempty"`
	Markers  string   `json:"markers,omitempty"`
	Index    string   `json:"index,omitempty"`
	Extras   []string `json:"extras,omitempty"`
	Editable bool     `json:"editable,omitempty"`
	Git      string   `json:"git,omitempty"`
	Ref      string   `json:"ref,omitempty"`
	Path     string   `json:"path,omitempty"`
}

// ParseLockfile strictly decodes a Pipfile.lock document. Unknown top-level
// keys are rejected.
func ParseLockfile(r io.Reader) (*Lockfile, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading lockfile")
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, errors.Wrap(err, "decoding lockfile")
	}
	for k := range top {
		switch k {
		case "_meta", "default", "develop":
		default:
			return nil, errors.Errorf("decoding lockfile: unknown field %q", k)
		}
	}
	if _, ok := top["_meta"]; !ok {
		return nil, errors.New("decoding lockfile: missing _meta")
	}
	var lf Lockfile
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&lf); err != nil {
		return nil, errors.Wrap(err, "decoding lockfile")
	}
	return &lf, nil
}

// ReadLockfile reads and decodes the lockfile at path.
func ReadLockfile(fs billy.Filesystem, path string) (*Lockfile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening lockfile")
	}
	defer f.Close()
	return ParseLockfile(f)
}
