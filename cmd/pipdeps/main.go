// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/pipdeps/pipdeps/internal/command/info"
	"github.com/pipdeps/pipdeps/internal/command/pipfileinfo"
	"github.com/pipdeps/pipdeps/internal/command/validatelockfile"
	"github.com/pipdeps/pipdeps/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// globals are the flags shared by every command.
type globals struct {
	Registry   string
	UserAgent  string
	ConfigPath string
	Verbose    bool
}

func (g *globals) flagSet() *flag.FlagSet {
	set := flag.NewFlagSet("pipdeps", flag.ContinueOnError)
	set.StringVar(&g.Registry, "registry", "", "base URL of the package registry (default https://pypi.org)")
	set.StringVar(&g.UserAgent, "user-agent", "", "User-Agent sent to the registry")
	set.StringVar(&g.ConfigPath, "config", "", "YAML settings file")
	set.BoolVar(&g.Verbose, "v", false, "log progress to stderr")
	return set
}

// settings merges the settings file with flags, flags taking precedence.
func (g *globals) settings() (config.Settings, error) {
	s := config.Default()
	if g.ConfigPath != "" {
		path, err := filepath.Abs(g.ConfigPath)
		if err != nil {
			return s, errors.Wrap(err, "resolving settings path")
		}
		if s, err = config.Load(osfs.New("/"), path, false); err != nil {
			return s, err
		}
	}
	if g.Registry != "" {
		s.Registry = g.Registry
	}
	if g.UserAgent != "" {
		s.UserAgent = g.UserAgent
	}
	return s, s.Validate()
}

func rootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "pipdeps [subcommand]",
		Short:         "Show what PyPI releases require at runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.Verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
			s, err := g.settings()
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithSettings(cmd.Context(), s))
			return nil
		},
	}
	root.PersistentFlags().AddGoFlagSet(g.flagSet())
	root.AddCommand(info.Command())
	root.AddCommand(pipfileinfo.Command())
	root.AddCommand(validatelockfile.Command())
	return root
}

// printError writes err and each distinct cause beneath it.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "Error: %v\n", err)
	prev := err.Error()
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		if msg := cause.Error(); msg != prev {
			red.Fprintf(w, "  caused by: %s\n", msg)
			prev = msg
		}
	}
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
