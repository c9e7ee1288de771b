// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"
)

// extractCopyBufferSize defines per-worker buffer size for member copy during extraction.
const extractCopyBufferSize = 64 * 1024

// ExtractOptions configures package extraction.
type ExtractOptions struct {
	// OnEntryDone is called after one member is fully written.
	OnEntryDone func(entry MemberProgress) `json:"-" yaml:"-"`
	// MaxWorkers limits parallel member writers; zero means GOMAXPROCS.
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// Overwrite replaces existing files instead of failing.
	Overwrite bool `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
}

// extractWorkItem stores one member with prepared output relative path.
type extractWorkItem struct {
	file    *zip.File
	relPath string
	index   int
}

// Extract verifies the package footer and unpacks every member to dstDir.
// Members run in parallel; on failure the first encountered error is returned.
func Extract(ctx context.Context, pkgPath string, dstDir string, opts ExtractOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	f, size, err := openFileWithSize(pkgPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	footer, err := verifyFooterAt(f, size)
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(io.NewSectionReader(f, 0, footer.Size), footer.Size)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	items, err := prepareExtractWorkItems(zr.File)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	if err := prepareExtractDirs(dstRootAbs, items); err != nil {
		return err
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(items))

	taskCh := make(chan extractWorkItem, len(items))
	errCh := make(chan error, len(items))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			copyBuf := make([]byte, extractCopyBufferSize)
			for task := range taskCh {
				err := extractMember(ctx, dstRootAbs, task, len(items), copyBuf, opts)
				errCh <- err
				if err != nil {
					cancel()
				}
			}
		})
	}

	for _, task := range items {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()
	close(errCh)

	var first error
	for err := range errCh {
		if err != nil && first == nil {
			first = err
		}
	}

	return first
}

// prepareExtractWorkItems validates member paths and prepares relative fs paths.
func prepareExtractWorkItems(files []*zip.File) ([]extractWorkItem, error) {
	items := make([]extractWorkItem, 0, len(files))
	for i, file := range files {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}

		normalized, err := normalizeExtractPath(file.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, file.Name)
		}

		items = append(items, extractWorkItem{
			file:    file,
			relPath: filepath.FromSlash(normalized),
			index:   i,
		})
	}

	return items, nil
}

// prepareExtractDirs creates unique parent directories needed by work items.
func prepareExtractDirs(dstRootAbs string, items []extractWorkItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, task := range items {
		dir := filepath.Dir(filepath.Join(dstRootAbs, task.relPath))
		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	return nil
}

// extractMember writes one member below dstRootAbs.
func extractMember(ctx context.Context, dstRootAbs string, task extractWorkItem, total int, buf []byte, opts ExtractOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rc, err := task.file.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", task.file.Name, err)
	}
	defer func() { _ = rc.Close() }()

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if opts.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	out, err := os.OpenFile(filepath.Join(dstRootAbs, task.relPath), flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", task.file.Name, err)
	}

	written, copyErr := io.CopyBuffer(out, rc, buf)
	closeErr := out.Close()
	if copyErr != nil {
		return fmt.Errorf("write %s: %w", task.file.Name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", task.file.Name, closeErr)
	}

	if opts.OnEntryDone != nil {
		opts.OnEntryDone(MemberProgress{
			Path:  task.file.Name,
			Size:  written,
			Index: task.index,
			Total: total,
		})
	}

	return nil
}

// normalizeExtractPath normalizes a member path and rejects absolute or traversal inputs.
func normalizeExtractPath(name string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidMemberPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if strings.HasPrefix(raw, "/") || hasWindowsDrivePrefix(raw) {
		return "", ErrInvalidMemberPath
	}

	parts := strings.Split(raw, "/")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidMemberPath
		default:
			clean = append(clean, part)
		}
	}
	if len(clean) == 0 {
		return "", ErrInvalidMemberPath
	}

	return strings.Join(clean, "/"), nil
}

// hasWindowsDrivePrefix reports whether path starts with a drive like C:.
func hasWindowsDrivePrefix(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}

	b := path[0]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
