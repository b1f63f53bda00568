// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package archivetest

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/pipdeps/pipdeps/pkg/archive"
)

func ZipFile(entries []archive.ZipEntry) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if err := entry.WriteTo(zw); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Wheel builds a wheel of name-version carrying the given metadata.json document.
func Wheel(name, version, metadataJSON string) ([]byte, error) {
	info := fmt.Sprintf("%s-%s.dist-info", name, version)
	buf, err := ZipFile([]archive.ZipEntry{
		{FileHeader: &zip.FileHeader{Name: name + "/__init__.py"}, Body: []byte("")},
		{FileHeader: &zip.FileHeader{Name: info + "/METADATA"}, Body: []byte("Metadata-Version: 2.0\nName: " + name + "\n")},
		{FileHeader: &zip.FileHeader{Name: info + "/metadata.json"}, Body: []byte(metadataJSON)},
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
