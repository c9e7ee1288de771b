// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

// Package ci resolves release metadata (version, author, title) from a CI
// environment or the local git checkout, and reports outputs back to CI.
package ci

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/woozymasta/rmskin"
)

// Environment variable names consumed from GitHub Actions.
const (
	EnvCI         = "CI"
	EnvActions    = "GITHUB_ACTIONS"
	EnvRef        = "GITHUB_REF"
	EnvSHA        = "GITHUB_SHA"
	EnvActor      = "GITHUB_ACTOR"
	EnvRepository = "GITHUB_REPOSITORY"
	EnvOutput     = "GITHUB_OUTPUT"
	EnvStepDebug  = "ACTIONS_STEP_DEBUG"

	// OutputArchiveName is the output key carrying the package file name.
	OutputArchiveName = "arc-name"

	shortHashLen = 7
)

// ErrMalformedRepoName means GITHUB_REPOSITORY is not in "owner/name" form.
var ErrMalformedRepoName = errors.New("malformed repository name")

// Env reads CI metadata through Getenv and falls back to git data in Dir.
type Env struct {
	// Getenv returns environment values; nil means os.Getenv.
	Getenv func(string) string
	// Dir is a path inside the git checkout used for fallbacks.
	Dir string
}

// FromOS returns Env backed by process environment.
func FromOS(dir string) Env {
	return Env{Getenv: os.Getenv, Dir: dir}
}

// getenv returns trimmed value of key.
func (e Env) getenv(key string) string {
	if e.Getenv == nil {
		return strings.TrimSpace(os.Getenv(key))
	}

	return strings.TrimSpace(e.Getenv(key))
}

// Detected reports whether the process runs in a CI job.
func (e Env) Detected() bool {
	return strings.EqualFold(e.getenv(EnvCI), "true") || strings.EqualFold(e.getenv(EnvActions), "true")
}

// Debug reports whether CI requested step debug output.
func (e Env) Debug() bool {
	return strings.EqualFold(e.getenv(EnvStepDebug), "true")
}

// Version derives the release version.
// With GITHUB_REF/GITHUB_SHA set it follows rmskin.DeriveVersion; otherwise it
// uses a tag pointing at git HEAD, then the short HEAD hash, then rmskin.FallbackVersion.
func (e Env) Version() (string, error) {
	ref, sha := e.getenv(EnvRef), e.getenv(EnvSHA)
	if ref != "" || sha != "" {
		return rmskin.DeriveVersion(ref, sha), nil
	}

	repo, err := e.openRepo()
	if err != nil {
		return rmskin.FallbackVersion, nil //nolint:nilerr // no checkout is a valid fallback case
	}

	return gitVersion(repo)
}

// Author returns GITHUB_ACTOR, then git user.name, then rmskin.DefaultAuthor.
func (e Env) Author() string {
	if actor := e.getenv(EnvActor); actor != "" {
		return actor
	}

	if name := e.gitUserName(); name != "" {
		return name
	}

	return rmskin.DefaultAuthor
}

// Title returns the repository name from GITHUB_REPOSITORY, or base name of Dir.
func (e Env) Title() (string, error) {
	if repo := e.getenv(EnvRepository); repo != "" {
		_, name, ok := strings.Cut(repo, "/")
		if !ok || name == "" {
			return "", fmt.Errorf("%w: %s", ErrMalformedRepoName, repo)
		}

		return name, nil
	}

	dir := e.Dir
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}

	return filepath.Base(abs), nil
}

// WriteOutput appends "key=value" to GITHUB_OUTPUT.
// It reports false when no output file is configured.
func (e Env) WriteOutput(key, value string) (bool, error) {
	path := e.getenv(EnvOutput)
	if path == "" {
		return false, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return false, fmt.Errorf("open CI output: %w", err)
	}

	if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write CI output: %w", err)
	}

	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close CI output: %w", err)
	}

	return true, nil
}

// openRepo opens the git checkout containing Dir.
func (e Env) openRepo() (*git.Repository, error) {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}

	return git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
}

// gitUserName returns user.name from repository or global git config.
func (e Env) gitUserName() string {
	if repo, err := e.openRepo(); err == nil {
		if cfg, err := repo.ConfigScoped(config.GlobalScope); err == nil {
			return strings.TrimSpace(cfg.User.Name)
		}
	}

	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(cfg.User.Name)
}

// gitVersion returns the tag at HEAD (without "v" prefix) or the short HEAD hash.
func gitVersion(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return rmskin.FallbackVersion, nil
		}

		return "", fmt.Errorf("resolve git HEAD: %w", err)
	}

	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list git tags: %w", err)
	}
	defer tags.Close()

	var tag string
	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if obj, err := repo.TagObject(target); err == nil {
			commit, err := obj.Commit()
			if err != nil {
				return nil //nolint:nilerr // tags of non-commit objects are ignored
			}

			target = commit.Hash
		}

		if target == head.Hash() && (tag == "" || ref.Name().Short() > tag) {
			tag = ref.Name().Short()
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan git tags: %w", err)
	}

	if tag != "" {
		return rmskin.TrimVersionTag(tag), nil
	}

	return head.Hash().String()[:shortHashLen], nil
}
