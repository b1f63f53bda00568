// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package validatelockfile

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pipdeps/pipdeps/pkg/act"
	"github.com/pipdeps/pipdeps/pkg/act/cli"
	"github.com/pipdeps/pipdeps/pkg/manifest"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Config holds all configuration for the validate-lockfile command.
type Config struct {
	Lockfile string
}

// Validate ensures the configuration is valid.
func (c Config) Validate() error {
	if c.Lockfile == "" {
		return errors.New("lockfile path is required")
	}
	return nil
}

// Deps holds dependencies for the command.
type Deps struct {
	IO cli.IO
	FS billy.Filesystem
}

func (d *Deps) SetIO(cio cli.IO) { d.IO = cio }

// InitDeps initializes Deps.
func InitDeps(context.Context) (*Deps, error) {
	return &Deps{FS: osfs.New("/")}, nil
}

func parseArgs(cfg *Config, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return errors.Wrap(err, "resolving lockfile path")
	}
	cfg.Lockfile = path
	return nil
}

// Handler strictly decodes a Pipfile.lock and reports whether it is well formed.
func Handler(ctx context.Context, cfg Config, deps *Deps) (*act.NoOutput, error) {
	lf, err := manifest.ReadLockfile(deps.FS, cfg.Lockfile)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(deps.IO.Out, "ok (%d default, %d develop)\n", len(lf.Default), len(lf.Develop))
	return &act.NoOutput{}, nil
}

// Command creates a new validate-lockfile command instance.
func Command() *cobra.Command {
	cfg := Config{}
	return &cobra.Command{
		Use:   "validate-lockfile <Pipfile.lock>",
		Short: "Check that a Pipfile.lock matches the expected schema",
		Args:  cobra.ExactArgs(1),
		RunE: cli.RunE(
			&cfg,
			cli.Positional(parseArgs, "Pipfile.lock"),
			InitDeps,
			Handler,
		),
	}
}
