// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// pluginBinaryMatcher matches plugin files routed into bitness folders.
var pluginBinaryMatcher = mustPathMatcher(pluginBinaryRules)

// Assemble writes the package archive for inv. Members are written in fixed order:
// header image and manifest from BuildDir, then every file of each present
// component kind in inventory order. Plugin binaries are stored as
// Plugins/<32bit|64bit>/<file>. The archive is closed before return.
// On failure the partially written archive is left in place.
func Assemble(ctx context.Context, inv Inventory, opts AssembleOptions) (*AssembleResult, error) {
	startedAt := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	if strings.TrimSpace(opts.ArchiveName) == "" {
		return nil, ErrEmptyArchiveName
	}

	members, err := planMembers(inv, opts)
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(opts.OutputDir, opts.ArchiveName)
	if err := writeArchive(ctx, outPath, members, opts); err != nil {
		return nil, err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	opts.Logger.Info(fmt.Sprintf("Archive size = %d (%#X)", info.Size(), info.Size()))

	return &AssembleResult{
		Path:     outPath,
		Members:  members,
		Size:     info.Size(),
		Duration: time.Since(startedAt),
	}, nil
}

// planMembers resolves archive members in write order and validates their paths.
func planMembers(inv Inventory, opts AssembleOptions) ([]Member, error) {
	exclude, err := newPathMatcher(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var members []Member

	bmpSrc := filepath.Join(opts.BuildDir, HeaderImageName)
	if _, err := os.Stat(bmpSrc); err == nil {
		members = append(members, Member{Source: bmpSrc, Path: HeaderImageName})
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("stat header image copy: %w", err)
	}

	iniSrc := filepath.Join(opts.BuildDir, ManifestName)
	if _, err := os.Stat(iniSrc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no reconciled copy in build directory", ErrMissingManifest)
		}

		return nil, fmt.Errorf("stat manifest copy: %w", err)
	}
	members = append(members, Member{Source: iniSrc, Path: ManifestName})

	for _, kind := range inv.Kinds() {
		kindMembers, err := walkKind(opts.Root, kind, exclude)
		if err != nil {
			return nil, err
		}

		members = append(members, kindMembers...)
	}

	if err := validateUniqueMembers(members); err != nil {
		return nil, err
	}

	return members, nil
}

// walkKind lists files under root/kind in lexical order.
// Symlinked folders, the kind folder included, are followed; links back to an
// ancestor folder are skipped.
func walkKind(root string, kind Kind, exclude *pathMatcher) ([]Member, error) {
	w := kindWalker{
		kind:      kind,
		exclude:   exclude,
		ancestors: make(map[string]struct{}),
	}

	if err := w.walk(filepath.Join(root, string(kind)), string(kind)); err != nil {
		return nil, fmt.Errorf("walk %s: %w", kind, err)
	}

	return w.members, nil
}

// kindWalker collects members of one component kind.
type kindWalker struct {
	exclude   *pathMatcher
	ancestors map[string]struct{}
	kind      Kind
	members   []Member
}

// walk visits dir, whose archive-relative path is rel.
func (w *kindWalker) walk(dir string, rel string) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return err
	}
	if _, ok := w.ancestors[resolved]; ok {
		return nil
	}

	w.ancestors[resolved] = struct{}{}
	defer delete(w.ancestors, resolved)

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		full := filepath.Join(resolved, entry.Name())
		childRel := path.Join(rel, entry.Name())

		isDir, isFile, err := entryType(full)
		if err != nil {
			return err
		}

		if isDir {
			if w.exclude.Match(childRel, true) {
				continue
			}
			if err := w.walk(full, childRel); err != nil {
				return err
			}

			continue
		}
		if !isFile {
			continue
		}

		archivePath, err := memberPath(childRel)
		if err != nil {
			return err
		}
		if w.exclude.Match(archivePath, false) {
			continue
		}

		member := Member{Source: full, Path: archivePath}
		if w.kind == KindPlugins && pluginBinaryMatcher.Match(entry.Name(), false) {
			bitness, err := ClassifyBinary(full)
			if err != nil {
				return err
			}

			member.Bitness = bitness
			member.Path = path.Join(string(w.kind), bitness.String(), entry.Name())
		}

		w.members = append(w.members, member)
	}

	return nil
}

// writeArchive creates outPath and writes members with maximum deflate compression.
func writeArchive(ctx context.Context, outPath string, members []Member, opts AssembleOptions) error {
	f, err := os.OpenFile(outPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for i, member := range members {
		if err := ctx.Err(); err != nil {
			return err
		}

		size, err := writeMember(zw, member)
		if err != nil {
			return err
		}
		opts.Logger.Debug("Archiving file", "path", member.Path)

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(MemberProgress{
				Path:  member.Path,
				Size:  size,
				Index: i,
				Total: len(members),
			})
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	f = nil

	return nil
}

// writeMember streams one source file into the archive.
func writeMember(zw *zip.Writer, member Member) (int64, error) {
	src, err := os.Open(member.Source)
	if err != nil {
		return 0, fmt.Errorf("open member %s: %w", member.Path, err)
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat member %s: %w", member.Path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, fmt.Errorf("member header %s: %w", member.Path, err)
	}
	header.Name = member.Path
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, fmt.Errorf("create member %s: %w", member.Path, err)
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("write member %s: %w", member.Path, err)
	}

	return n, nil
}

// validateUniqueMembers ensures there are no duplicate archive paths.
func validateUniqueMembers(members []Member) error {
	seen := make(map[string]string, len(members))
	for _, m := range members {
		key := strings.ToLower(m.Path)
		if existing, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q conflicts with %q", ErrDuplicateMember, m.Path, existing)
		}

		seen[key] = m.Path
	}

	return nil
}
