// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package archivetest builds in-memory archives for tests.
package archivetest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"

	"github.com/pipdeps/pipdeps/pkg/archive"
)

func TarFile(entries []archive.TarEntry) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, entry := range entries {
		entry.Header.Size = int64(len(entry.Body))
		if entry.Header.Typeflag == 0 {
			entry.Header.Typeflag = tar.TypeReg
		}
		if entry.Header.Mode == 0 {
			entry.Header.Mode = 0644
		}
		if err := entry.WriteTo(tw); err != nil {
			return nil, err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

func TgzFile(entries []archive.TarEntry) (*bytes.Buffer, error) {
	buf, err := TarFile(entries)
	if err != nil {
		return nil, err
	}
	zbuf := new(bytes.Buffer)
	w := gzip.NewWriter(zbuf)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return zbuf, nil
}

// Sdist builds a source distribution of name-version with the given requires.txt.
func Sdist(name, version, requiresTxt string) ([]byte, error) {
	root := fmt.Sprintf("%s-%s", name, version)
	buf, err := TgzFile([]archive.TarEntry{
		{Header: &tar.Header{Name: root + "/setup.py"}, Body: []byte("from setuptools import setup\nsetup()\n")},
		{Header: &tar.Header{Name: root + "/" + name + ".egg-info/PKG-INFO"}, Body: []byte("Metadata-Version: 1.1\nName: " + name + "\n")},
		{Header: &tar.Header{Name: root + "/" + name + archive.RequiresTxtSuffix}, Body: []byte(requiresTxt)},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
