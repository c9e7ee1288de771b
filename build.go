// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Build runs the full package pipeline for a repository:
// discover, reconcile manifest, normalize header image, assemble archive, append footer.
// Intermediate files live in a temporary build directory removed on return.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	logger := opts.Logger

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	logger.Info("Searching path: " + filepath.Base(root))

	inv, err := Discover(root, DiscoverOptions{Logger: logger})
	if err != nil {
		return nil, err
	}

	if !inv.HasManifest {
		return nil, fmt.Errorf("%w: %s", ErrMissingManifest, root)
	}
	if !inv.HasStructure() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedRepository, root)
	}

	buildDir, err := os.MkdirTemp("", "rmskin-build-")
	if err != nil {
		return nil, fmt.Errorf("create build directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(buildDir) }()

	rec, err := Reconcile(root, buildDir, ReconcileOptions{
		DeriveVersion: opts.DeriveVersion,
		Logger:        logger,
		Title:         opts.Title,
		Version:       opts.Version,
		Author:        opts.Author,
	})
	if err != nil {
		return nil, err
	}

	if inv.HasHeaderImage {
		if _, err := NormalizeHeaderImage(root, buildDir, logger); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = root
	}

	archiveName := rec.ArchiveName()
	assembled, err := Assemble(ctx, inv, AssembleOptions{
		OnEntryDone: opts.OnEntryDone,
		Logger:      logger,
		Root:        root,
		BuildDir:    buildDir,
		OutputDir:   outputDir,
		ArchiveName: archiveName,
		Exclude:     opts.Exclude,
	})
	if err != nil {
		return nil, err
	}

	footer, err := AppendFooter(assembled.Path)
	if err != nil {
		return nil, err
	}
	if data, err := footer.MarshalBinary(); err == nil {
		logger.Debug(fmt.Sprintf("Appending footer: % X", data))
	}
	logger.Info("Archive successfully prepared.")

	return &BuildResult{
		ArchivePath: assembled.Path,
		ArchiveName: archiveName,
		Name:        rec.Name,
		Version:     rec.Version,
		Members:     assembled.Members,
		Inventory:   inv,
		Footer:      footer,
	}, nil
}
