// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

// Package config loads, normalizes, and validates rmskin-build settings.
//
// Settings come from an optional TOML file (explicit path, or rmskin.toml in
// the working directory) and are then overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ProjectFileName is the config file picked up from the working directory.
const ProjectFileName = "rmskin.toml"

// Build contains package build inputs.
type Build struct {
	Path    string   `toml:"path"`
	OutDir  string   `toml:"out_dir"`
	Title   string   `toml:"title"`
	Author  string   `toml:"author"`
	Version string   `toml:"version"`
	Exclude []string `toml:"exclude"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all rmskin-build settings.
type Config struct {
	Build   Build   `toml:"build"`
	Logging Logging `toml:"logging"`
}

// Default returns configuration with repository defaults applied.
func Default() Config {
	return Config{
		Build: Build{
			Path:    ".",
			Version: "auto",
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

// Load resolves, parses, and validates a configuration file.
// A missing file is not an error when path is empty; defaults are returned.
// The resolved path and whether it existed are returned alongside.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if path != "" && !exists {
		return nil, "", false, fmt.Errorf("config file %s: %w", resolvedPath, fs.ErrNotExist)
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer func() { _ = file.Close() }()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = ProjectFileName
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", abs)
	}

	return abs, true, nil
}

// Normalize trims values, lowercases logging settings and fills defaults.
// It is safe to call again after fields are overridden.
func (c *Config) Normalize() {
	c.Build.Path = strings.TrimSpace(c.Build.Path)
	if c.Build.Path == "" {
		c.Build.Path = "."
	}
	c.Build.OutDir = strings.TrimSpace(c.Build.OutDir)
	c.Build.Title = strings.TrimSpace(c.Build.Title)
	c.Build.Author = strings.TrimSpace(c.Build.Author)
	c.Build.Version = strings.TrimSpace(c.Build.Version)
	if c.Build.Version == "" {
		c.Build.Version = "auto"
	}

	exclude := c.Build.Exclude[:0]
	for _, pattern := range c.Build.Exclude {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			exclude = append(exclude, pattern)
		}
	}
	c.Build.Exclude = exclude

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "warning":
		c.Logging.Level = "warn"
	}
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}

	if strings.ContainsAny(c.Build.Title, `/\`) {
		return errors.New("build.title must not contain path separators")
	}

	return nil
}
