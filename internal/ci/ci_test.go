// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package ci

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/woozymasta/rmskin"
)

// mapEnv returns a Getenv func backed by values.
func mapEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

// initRepo creates a git repository with one commit and returns its HEAD hash.
func initRepo(t *testing.T, dir string) (*git.Repository, plumbing.Hash) {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "RMSKIN.ini"), []byte("[rmskin]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := wt.Add("RMSKIN.ini"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	return repo, hash
}

func TestVersion_FromCIRef(t *testing.T) {
	t.Parallel()

	env := Env{Getenv: mapEnv(map[string]string{
		EnvRef: "refs/tags/v3.1.0",
		EnvSHA: "0123456789abcdef0123",
	})}

	got, err := env.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if got != "3.1.0" {
		t.Fatalf("Version=%q, want 3.1.0", got)
	}

	env.Getenv = mapEnv(map[string]string{EnvRef: "refs/heads/main", EnvSHA: "0123456789abcdef0123"})
	if got, _ := env.Version(); got != "cdef0123" {
		t.Fatalf("Version=%q, want sha suffix", got)
	}
}

func TestVersion_FromGit(t *testing.T) {
	t.Parallel()

	t.Run("tag at head", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		repo, hash := initRepo(t, dir)
		if _, err := repo.CreateTag("v1.4.0", hash, nil); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}

		got, err := Env{Getenv: mapEnv(nil), Dir: dir}.Version()
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		if got != "1.4.0" {
			t.Fatalf("Version=%q, want 1.4.0", got)
		}
	})

	t.Run("annotated tag", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		repo, hash := initRepo(t, dir)
		_, err := repo.CreateTag("2.0", hash, &git.CreateTagOptions{
			Tagger:  &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Unix(1700000000, 0)},
			Message: "release",
		})
		if err != nil {
			t.Fatalf("CreateTag: %v", err)
		}

		got, err := Env{Getenv: mapEnv(nil), Dir: dir}.Version()
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		if got != "2.0" {
			t.Fatalf("Version=%q, want 2.0", got)
		}
	})

	t.Run("short hash", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, hash := initRepo(t, dir)

		got, err := Env{Getenv: mapEnv(nil), Dir: dir}.Version()
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		if got != hash.String()[:shortHashLen] {
			t.Fatalf("Version=%q, want %q", got, hash.String()[:shortHashLen])
		}
	})

	t.Run("empty repository", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if _, err := git.PlainInit(dir, false); err != nil {
			t.Fatalf("PlainInit: %v", err)
		}

		got, err := Env{Getenv: mapEnv(nil), Dir: dir}.Version()
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		if got != rmskin.FallbackVersion {
			t.Fatalf("Version=%q, want fallback", got)
		}
	})
}

func TestTitle(t *testing.T) {
	t.Parallel()

	env := Env{Getenv: mapEnv(map[string]string{EnvRepository: "owner/Clock-Skin"})}
	if got, err := env.Title(); err != nil || got != "Clock-Skin" {
		t.Fatalf("Title=%q, %v", got, err)
	}

	env.Getenv = mapEnv(map[string]string{EnvRepository: "no-slash"})
	if _, err := env.Title(); !errors.Is(err, ErrMalformedRepoName) {
		t.Fatalf("expected ErrMalformedRepoName, got %v", err)
	}

	dir := filepath.Join(t.TempDir(), "LocalSkin")
	env = Env{Getenv: mapEnv(nil), Dir: dir}
	if got, err := env.Title(); err != nil || got != "LocalSkin" {
		t.Fatalf("Title=%q, %v", got, err)
	}
}

func TestAuthor_FromActor(t *testing.T) {
	t.Parallel()

	env := Env{Getenv: mapEnv(map[string]string{EnvActor: " octocat "})}
	if got := env.Author(); got != "octocat" {
		t.Fatalf("Author=%q", got)
	}
}

func TestWriteOutput(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "github_output")
	if err := os.WriteFile(out, []byte("previous=1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	env := Env{Getenv: mapEnv(map[string]string{EnvOutput: out})}
	written, err := env.WriteOutput(OutputArchiveName, "Clock_1.0.rmskin")
	if err != nil || !written {
		t.Fatalf("WriteOutput=%v, %v", written, err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(raw) != "previous=1\narc-name=Clock_1.0.rmskin\n" {
		t.Fatalf("output=%q", raw)
	}

	written, err = Env{Getenv: mapEnv(nil)}.WriteOutput(OutputArchiveName, "x")
	if err != nil || written {
		t.Fatalf("WriteOutput without file=%v, %v", written, err)
	}
}

func TestDetectedAndDebug(t *testing.T) {
	t.Parallel()

	env := Env{Getenv: mapEnv(map[string]string{EnvActions: "true", EnvStepDebug: "TRUE"})}
	if !env.Detected() || !env.Debug() {
		t.Fatal("expected CI with debug")
	}

	if env := (Env{Getenv: mapEnv(nil)}); env.Detected() || env.Debug() {
		t.Fatal("expected no CI")
	}
}
