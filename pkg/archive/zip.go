// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"iter"
	"strings"

	"github.com/pipdeps/pipdeps/internal/iterx"
	"github.com/pkg/errors"
)

// ZipEntry represents an entry in a zip archive.
type ZipEntry struct {
	*zip.FileHeader
	Body []byte
}

// WriteTo writes the ZipEntry to a zip writer.
func (e ZipEntry) WriteTo(zw *zip.Writer) error {
	fw, err := zw.CreateHeader(e.FileHeader)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, bytes.NewReader(e.Body)); err != nil {
		return err
	}
	return nil
}

// ToZipCompatibleReader coerces an io.Reader into an io.ReaderAt required to construct a zip.Reader.
func ToZipCompatibleReader(r io.Reader) (io.ReaderAt, int64, error) {
	seeker, seekerOK := r.(io.Seeker)
	readerAt, readerOK := r.(io.ReaderAt)
	if seekerOK && readerOK {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, errors.Wrap(err, "locating reader position")
		}
		size, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, errors.Wrap(err, "retrieving size")
		}
		if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
			return nil, 0, errors.Wrap(err, "restoring reader position")
		}
		return readerAt, size, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "buffering archive")
	}
	return bytes.NewReader(b), int64(len(b)), nil
}

// ZipEntries yields the entries of zr in central directory order.
func ZipEntries(zr *zip.Reader) iter.Seq2[*zip.File, error] {
	return iterx.FromSlice(zr.File)
}

// FindInZip returns the contents of the first entry whose name ends with suffix.
// The whole stream is buffered since the zip index sits at its end. rc is always closed.
func FindInZip(rc io.ReadCloser, suffix string) ([]byte, error) {
	defer rc.Close()
	ra, size, err := ToZipCompatibleReader(rc)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, &FormatError{Format: ZipFormat, Err: err}
	}
	for f, err := range ZipEntries(zr) {
		if err != nil {
			return nil, &FormatError{Format: ZipFormat, Err: err}
		}
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, suffix) {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, &FormatError{Format: ZipFormat, Err: errors.Wrapf(err, "opening %s", f.Name)}
		}
		defer r.Close()
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, &FormatError{Format: ZipFormat, Err: errors.Wrapf(err, "reading %s", f.Name)}
		}
		return b, nil
	}
	return nil, &FileNotFoundError{Suffix: suffix}
}
