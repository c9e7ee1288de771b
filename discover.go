// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"fmt"
	"os"
	"path/filepath"
)

// hiddenMatcher matches names skipped by discovery.
var hiddenMatcher = mustPathMatcher(hiddenRules)

// Discover inspects direct children of root and records present components.
// Matched folders are not recursed beyond their immediate children.
// An empty inventory is not an error; callers decide what is required.
func Discover(root string, opts DiscoverOptions) (Inventory, error) {
	logger := loggerOrDiscard(opts.Logger)

	entries, err := os.ReadDir(root)
	if err != nil {
		return Inventory{}, fmt.Errorf("read repository root: %w", err)
	}

	var inv Inventory
	for _, entry := range entries {
		name := entry.Name()
		if hiddenMatcher.Match(name, entry.IsDir()) {
			logger.Debug("skipping hidden entry", "name", name)
			continue
		}

		full := filepath.Join(root, name)
		isDir, isFile, err := entryType(full)
		if err != nil {
			return Inventory{}, err
		}

		switch {
		case isDir && name == string(KindSkins):
			count, err := countChildren(full, true, false)
			if err != nil {
				return Inventory{}, err
			}

			inv.Skins = count
			logger.Info(fmt.Sprintf("Found %d possible skin(s)", count))
		case isDir && name == string(KindLayouts):
			count, err := countChildren(full, true, true)
			if err != nil {
				return Inventory{}, err
			}

			inv.Layouts = count
			logger.Info(fmt.Sprintf("Found %d possible layout(s)", count))
		case isDir && name == string(KindPlugins):
			count, err := countChildren(full, true, false)
			if err != nil {
				return Inventory{}, err
			}

			inv.Plugins = count > 0
			logger.Info(fmt.Sprintf("Found %d plugin folder(s)", count))
		case isDir && name == string(KindVault):
			count, err := countChildren(full, true, true)
			if err != nil {
				return Inventory{}, err
			}

			inv.Vault = count
			logger.Info(fmt.Sprintf("Found %d possible @Vault item(s)", count))
		case isFile && name == ManifestName:
			inv.HasManifest = true
			logger.Info("Found " + ManifestName + " file")
		case isFile && name == HeaderImageName:
			inv.HasHeaderImage = true
			logger.Info("Found header image file")
		default:
			logger.Debug("skipping entry", "name", name)
		}
	}

	return inv, nil
}

// countChildren counts non-hidden immediate children of dir.
func countChildren(dir string, dirs bool, files bool) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filepath.Base(dir), err)
	}

	count := 0
	for _, entry := range entries {
		if hiddenMatcher.Match(entry.Name(), entry.IsDir()) {
			continue
		}

		isDir, isFile, err := entryType(filepath.Join(dir, entry.Name()))
		if err != nil {
			return 0, err
		}

		if (isDir && dirs) || (isFile && files) {
			count++
		}
	}

	return count, nil
}

// entryType resolves symlinks and reports whether path is a directory or regular file.
func entryType(path string) (isDir bool, isFile bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// dangling symlink
			return false, false, nil
		}

		return false, false, fmt.Errorf("stat %s: %w", path, err)
	}

	return info.IsDir(), info.Mode().IsRegular(), nil
}
