// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package iterx

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

type sliceIter struct {
	vals []string
	err  error
}

func (s *sliceIter) Next() (string, error) {
	if len(s.vals) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v, nil
}

func TestToSeq2(t *testing.T) {
	boom := errors.New("boom")
	for _, tc := range []struct {
		name    string
		it      *sliceIter
		want    []string
		wantErr error
	}{
		{name: "empty", it: &sliceIter{}},
		{name: "values", it: &sliceIter{vals: []string{"a", "b"}}, want: []string{"a", "b"}},
		{name: "error ends iteration", it: &sliceIter{vals: []string{"a"}, err: boom}, want: []string{"a"}, wantErr: boom},
		{name: "wrapped sentinel", it: &sliceIter{vals: []string{"a"}, err: errors.Wrap(io.EOF, "reading")}, want: []string{"a"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			var gotErr error
			for v, err := range ToSeq2(tc.it, io.EOF) {
				if err != nil {
					gotErr = err
					continue
				}
				got = append(got, v)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
			if gotErr != tc.wantErr {
				t.Errorf("error = %v, want %v", gotErr, tc.wantErr)
			}
		})
	}
}

func TestToSeq2Break(t *testing.T) {
	it := &sliceIter{vals: []string{"a", "b", "c"}}
	for v := range ToSeq2(it, io.EOF) {
		if v == "a" {
			break
		}
	}
	if diff := cmp.Diff([]string{"b", "c"}, it.vals); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSlice(t *testing.T) {
	var got []int
	for v, err := range FromSlice([]int{1, 2, 3}) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
