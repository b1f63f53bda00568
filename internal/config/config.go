// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package config holds the settings shared by pipdeps commands.
package config

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/pipdeps/pipdeps/internal/httpx"
	"github.com/pipdeps/pipdeps/pkg/registry/pypi"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

// DefaultUserAgent identifies pipdeps to the registry.
const DefaultUserAgent = "pipdeps/0.1"

// Settings are the values read from a settings file and global flags.
type Settings struct {
	Registry  string `yaml:"registry"`
	UserAgent string `yaml:"user_agent"`
	Workers   int    `yaml:"workers"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{Registry: pypi.DefaultURL.String(), UserAgent: DefaultUserAgent}
}

// Load reads a YAML settings file from fs on top of the defaults.
// A missing file is not an error when optional is set.
func Load(fs billy.Filesystem, path string, optional bool) (Settings, error) {
	s := Default()
	f, err := fs.Open(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return s, nil
		}
		return s, errors.Wrap(err, "opening settings")
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return s, errors.Wrapf(err, "decoding settings %s", path)
	}
	return s, s.Validate()
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if _, err := s.RegistryURL(); err != nil {
		return err
	}
	if s.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

// RegistryURL parses the configured registry base URL.
func (s Settings) RegistryURL() (*url.URL, error) {
	if s.Registry == "" {
		return pypi.DefaultURL, nil
	}
	u, err := url.Parse(s.Registry)
	if err != nil {
		return nil, errors.Wrap(err, "parsing registry URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("registry URL must be http or https: %s", s.Registry)
	}
	return u, nil
}

// NewRegistry builds the registry client described by the settings.
func (s Settings) NewRegistry(client httpx.BasicClient) (*pypi.HTTPRegistry, error) {
	base, err := s.RegistryURL()
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &pypi.HTTPRegistry{
		Client:  &httpx.WithUserAgent{BasicClient: client, UserAgent: s.UserAgent},
		BaseURL: base,
	}, nil
}

type settingsKey struct{}

// WithSettings attaches s to ctx.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// FromContext returns the settings attached to ctx, or the defaults.
func FromContext(ctx context.Context) Settings {
	if s, ok := ctx.Value(settingsKey{}).(Settings); ok {
		return s
	}
	return Default()
}
