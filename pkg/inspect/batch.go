// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one package of a batch.
type Result struct {
	// Index is the position of Package in the batch input.
	Index   int
	Package string
	Report  *Report
	Err     error
}

// Options configures All.
type Options struct {
	// Workers bounds concurrent inspections. Non-positive values use runtime.NumCPU().
	Workers int
	// OnDone is called from worker goroutines as each package finishes.
	OnDone func(Result)
}

// All inspects the latest release of every package concurrently.
//
// Results are returned in input order. A failing package does not stop the
// others; each Result carries its own error.
func All(ctx context.Context, in *Inspector, names []string, opts Options) []Result {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(names))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			r := Result{Index: i, Package: name}
			if err := ctx.Err(); err != nil {
				r.Err = newError(name, StageFetchMetadata, "", err, KindUnknown)
			} else {
				r.Report, r.Err = in.Latest(ctx, name)
			}
			results[i] = r
			if opts.OnDone != nil {
				opts.OnDone(r)
			}
			return nil
		})
	}
	g.Wait()
	return results
}

// FirstError returns the error of the earliest failed result in input order.
func FirstError(results []Result) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
