// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"iter"
	"strings"

	"github.com/pipdeps/pipdeps/internal/iterx"
	"github.com/pkg/errors"
)

// TarEntry represents an entry in a tar archive.
type TarEntry struct {
	*tar.Header
	Body []byte
}

// WriteTo writes the TarEntry to a tar writer.
func (e TarEntry) WriteTo(tw *tar.Writer) error {
	if err := tw.WriteHeader(e.Header); err != nil {
		return err
	}
	if _, err := tw.Write(e.Body); err != nil {
		return err
	}
	return nil
}

// TarEntries yields the headers of tr in stream order.
// The sequence is single-pass: the body of each entry is only readable from tr until the next step.
func TarEntries(tr *tar.Reader) iter.Seq2[*tar.Header, error] {
	return iterx.ToSeq2(tr, io.EOF)
}

// FindInTarGz returns the contents of the first entry whose name ends with suffix.
// The stream is read forward only. rc is always closed.
func FindInTarGz(rc io.ReadCloser, suffix string) ([]byte, error) {
	defer rc.Close()
	gzr, err := gzip.NewReader(rc)
	if err != nil {
		return nil, &FormatError{Format: TarGzFormat, Err: err}
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)
	for h, err := range TarEntries(tr) {
		if err != nil {
			return nil, &FormatError{Format: TarGzFormat, Err: err}
		}
		if h.FileInfo().IsDir() || !strings.HasSuffix(h.Name, suffix) {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return nil, &FormatError{Format: TarGzFormat, Err: errors.Wrapf(err, "reading %s", h.Name)}
		}
		return b, nil
	}
	return nil, &FileNotFoundError{Suffix: suffix}
}
