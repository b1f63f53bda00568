// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package iterx adapts pull-style iterators to range-over-func sequences.
package iterx

import (
	"errors"
	"iter"
)

type iterish[T any] interface {
	Next() (T, error)
}

// ToSeq2 converts a Next()-style iterator into an iter.Seq2.
//
// Iteration ends cleanly when Next returns sentinel. Any other error is
// yielded once alongside its value and then iteration stops.
func ToSeq2[T any](it iterish[T], sentinel error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			val, err := it.Next()
			if errors.Is(err, sentinel) {
				return
			}
			if !yield(val, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// FromSlice yields each element of s with a nil error.
func FromSlice[T any](s []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, v := range s {
			if !yield(v, nil) {
				return
			}
		}
	}
}
