// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package pipfileinfo

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/cheggaaa/pb"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pipdeps/pipdeps/internal/config"
	"github.com/pipdeps/pipdeps/pkg/act"
	"github.com/pipdeps/pipdeps/pkg/act/cli"
	"github.com/pipdeps/pipdeps/pkg/inspect"
	"github.com/pipdeps/pipdeps/pkg/manifest"
	"github.com/pipdeps/pipdeps/pkg/requirement"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the pipfile-info command.
type Config struct {
	Pipfile  string
	Workers  int
	Dev      bool
	Progress bool
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Pipfile == "" {
		return errors.New("Pipfile path is required")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO        cli.IO
	FS        billy.Filesystem
	Inspector *inspect.Inspector
	// Workers is the configured default used when the flag is unset.
	Workers int
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps from the settings attached to ctx.
func InitDeps(ctx context.Context) (*Deps, error) {
	s := config.FromContext(ctx)
	reg, err := s.NewRegistry(http.DefaultClient)
	if err != nil {
		return nil, err
	}
	return &Deps{
		FS:        osfs.New("/"),
		Inspector: &inspect.Inspector{Registry: reg},
		Workers:   s.Workers,
	}, nil
}

// parseArgs resolves the Pipfile against the working directory since Deps.FS is rooted at /.
func parseArgs(cfg *Config, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return errors.Wrap(err, "resolving Pipfile path")
	}
	cfg.Pipfile = path
	return nil
}

// FailedError is returned when at least one package could not be inspected.
type FailedError struct {
	Failed int
	Total  int
	First  error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d of %d packages failed; first: %v", e.Failed, e.Total, e.First)
}

func (e *FailedError) Cause() error  { return e.First }
func (e *FailedError) Unwrap() error { return e.First }

// Handler inspects every package of a Pipfile in parallel and prints their
// requirements in package-name order.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	pf, err := manifest.ReadPipfile(deps.FS, cfg.Pipfile)
	if err != nil {
		return nil, err
	}
	names := pf.Names(cfg.Dev)
	workers := cfg.Workers
	if workers == 0 {
		workers = deps.Workers
	}
	log.Printf("Inspecting %d packages from %s", len(names), cfg.Pipfile)
	opts := inspect.Options{Workers: workers}
	if cfg.Progress {
		bar := pb.New(len(names))
		bar.Output = deps.IO.Err
		bar.ShowTimeLeft = true
		bar.Start()
		defer bar.Finish()
		var mu sync.Mutex
		opts.OnDone = func(inspect.Result) {
			mu.Lock()
			defer mu.Unlock()
			bar.Increment()
		}
	}
	results := inspect.All(ctx, deps.Inspector, names, opts)
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			deps.IO.Failf("%s: %v", r.Package, r.Err)
			continue
		}
		fmt.Fprintln(deps.IO.Out, r.Package)
		fmt.Fprintf(deps.IO.Out, "latest version: %s\n", cli.Accent(r.Report.Version))
		fmt.Fprint(deps.IO.Out, requirement.Format(r.Report.Requirements))
	}
	if failed > 0 {
		return nil, &FailedError{Failed: failed, Total: len(results), First: inspect.FirstError(results)}
	}
	return &act.NoOutput{}, nil
}

// Command creates a new pipfile-info command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "pipfile-info [-workers N] [-dev] [-progress] <Pipfile>",
		Short: "Show the runtime requirements of every package in a Pipfile",
		Args:  cobra.ExactArgs(1),
		RunE: cli.RunE(
			&cfg,
			cli.Positional(parseArgs, "Pipfile"),
			InitDeps,
			Handler,
		),
	}
	cmd.Flags().AddGoFlagSet(flagSet(cmd.Name(), &cfg))
	return cmd
}

// flagSet returns the command-line flags for the Config struct.
func flagSet(name string, cfg *Config) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.IntVar(&cfg.Workers, "workers", 0, "maximum concurrent lookups (default: settings file, then CPU count)")
	set.BoolVar(&cfg.Dev, "dev", false, "also inspect [dev-packages]")
	set.BoolVar(&cfg.Progress, "progress", false, "show a progress bar on stderr")
	return set
}
