// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/woozymasta/rmskin"
	"github.com/woozymasta/rmskin/internal/ci"
	"github.com/woozymasta/rmskin/internal/config"
	"github.com/woozymasta/rmskin/internal/logging"
)

// buildFlags holds command-line overrides for config values.
type buildFlags struct {
	configPath string
	path       string
	outDir     string
	title      string
	author     string
	version    string
	logLevel   string
	logFormat  string
	exclude    []string
}

const rootLong = `Package a Rainmeter project into a .rmskin file.

The following files/folders are used if they exist in the project's root directory:

  Skins/      A folder holding Rainmeter skins.
  Layouts/    A folder holding Rainmeter layout files.
  Plugins/    A folder holding Rainmeter plugins (one folder per plugin).
  @Vault/     A resources folder accessible by all installed skins.
  RMSKIN.ini  (required) Options specific to installing the skin(s).
  RMSKIN.bmp  (optional) A 400x60 header image shown by the installer.

At least one of Skins, Layouts, Plugins or @Vault must be present.`

func newRootCommand() *cobra.Command {
	var flags buildFlags

	rootCmd := &cobra.Command{
		Use:           "rmskin-build",
		Short:         "Package Rainmeter skins into a .rmskin file",
		Long:          rootLong,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}

			return runBuild(cmd, cfg, ci.FromOS(cfg.Build.Path))
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&flags.path, "path", "p", ".", "Path to the repository containing the Rainmeter project")
	f.StringVarP(&flags.version, "version", "V", "auto", "Release version; \"auto\" derives it from the git tag or commit")
	f.StringVarP(&flags.author, "author", "a", "", "Release author (default: GITHUB_ACTOR, then git user.name)")
	f.StringVarP(&flags.title, "title", "t", "", "Package name when RMSKIN.ini has none (default: repository name)")
	f.StringVarP(&flags.outDir, "dir-out", "d", "", "Directory for the generated package (default: project path)")
	f.StringSliceVar(&flags.exclude, "exclude", nil, "Path patterns to leave out of the package (repeatable)")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Configuration file path (default: ./"+config.ProjectFileName+" when present)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(newInspectCommand(), newExtractCommand())

	return rootCmd
}

// resolveConfig loads config file and applies explicitly set flags on top.
func resolveConfig(cmd *cobra.Command, flags buildFlags) (*config.Config, error) {
	cfg, _, _, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("path") {
		cfg.Build.Path = flags.path
	}
	if changed("dir-out") {
		cfg.Build.OutDir = flags.outDir
	}
	if changed("title") {
		cfg.Build.Title = flags.title
	}
	if changed("author") {
		cfg.Build.Author = flags.author
	}
	if changed("version") {
		cfg.Build.Version = flags.version
	}
	if changed("exclude") {
		cfg.Build.Exclude = append(cfg.Build.Exclude, flags.exclude...)
	}
	if changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runBuild wires config and CI metadata into the package pipeline and reports the result.
func runBuild(cmd *cobra.Command, cfg *config.Config, env ci.Env) error {
	level := cfg.Logging.Level
	if env.Debug() {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		Output: cmd.ErrOrStderr(),
		Level:  level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}

	title := cfg.Build.Title
	if title == "" {
		title, err = env.Title()
		if err != nil {
			return err
		}
	}

	author := cfg.Build.Author
	if author == "" {
		author = env.Author()
	}

	res, err := rmskin.Build(cmd.Context(), rmskin.BuildOptions{
		DeriveVersion: env.Version,
		Logger:        logger,
		Root:          cfg.Build.Path,
		OutputDir:     cfg.Build.OutDir,
		Title:         title,
		Author:        author,
		Version:       cfg.Build.Version,
		Exclude:       excludeRules(cfg.Build.Exclude),
	})
	if err != nil {
		logger.Error("build failed", slog.Any("error", err))
		return err
	}

	written := false
	if env.Detected() {
		written, err = env.WriteOutput(ci.OutputArchiveName, res.ArchiveName)
		if err != nil {
			return err
		}
	}
	if !written {
		logger.Info("Archive name: " + res.ArchiveName)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), filepath.Clean(res.ArchivePath))
	return err
}

// excludeRules turns exclude patterns into include-match rules for the exclusion matcher.
// Patterns starting with "!" re-include matching paths.
func excludeRules(patterns []string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		action := pathrules.ActionInclude
		if len(pattern) > 1 && pattern[0] == '!' {
			action = pathrules.ActionExclude
			pattern = pattern[1:]
		}

		rules = append(rules, pathrules.Rule{Action: action, Pattern: pattern})
	}

	return rules
}
