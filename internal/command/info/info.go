// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package info

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/pipdeps/pipdeps/internal/config"
	"github.com/pipdeps/pipdeps/pkg/act"
	"github.com/pipdeps/pipdeps/pkg/act/cli"
	"github.com/pipdeps/pipdeps/pkg/inspect"
	"github.com/pipdeps/pipdeps/pkg/requirement"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the info command.
type Config struct {
	Package string
	Version string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Package == "" {
		return errors.New("package is required")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO        cli.IO
	Inspector *inspect.Inspector
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps from the settings attached to ctx.
func InitDeps(ctx context.Context) (*Deps, error) {
	reg, err := config.FromContext(ctx).NewRegistry(http.DefaultClient)
	if err != nil {
		return nil, err
	}
	return &Deps{Inspector: &inspect.Inspector{Registry: reg}}, nil
}

func parseArgs(cfg *Config, args []string) error {
	cfg.Package = args[0]
	return nil
}

// Handler prints the requirements of the latest (or the requested) release of a package.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	var r *inspect.Report
	var err error
	label := "latest version"
	if cfg.Version != "" {
		label = "version"
		r, err = deps.Inspector.Version(ctx, cfg.Package, cfg.Version)
	} else {
		r, err = deps.Inspector.Latest(ctx, cfg.Package)
	}
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(deps.IO.Out, "%s: %s\n", label, cli.Accent(r.Version))
	if r.RawVersion != r.Version.String() {
		fmt.Fprintf(deps.IO.Out, "tag: %s\n", r.RawVersion)
	}
	fmt.Fprintf(deps.IO.Out, "artifact: %s (%s)\n", r.Artifact.Filename, r.Artifact.PackageType)
	fmt.Fprint(deps.IO.Out, requirement.Format(r.Requirements))
	return &act.NoOutput{}, nil
}

// Command creates a new info command instance.
func Command() *cobra.Command {
	cfg := Config{}
	cmd := &cobra.Command{
		Use:   "info [-version <version>] <package>",
		Short: "Show the runtime requirements of a package release",
		Args:  cobra.ExactArgs(1),
		RunE: cli.RunE(
			&cfg,
			cli.Positional(parseArgs, "package"),
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
	set.StringVar(&cfg.Version, "version", "", "release to inspect instead of the latest")
	return set
}
