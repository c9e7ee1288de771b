// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// memberPath converts a root-relative host path into archive member form.
func memberPath(rel string) (string, error) {
	normalized := NormalizePath(filepath.ToSlash(rel))
	if normalized == "" || normalized == ".." || strings.HasPrefix(normalized, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidMemberPath, rel)
	}

	return normalized, nil
}

// hostPath converts a manifest path with "\" or "/" separators into host form.
func hostPath(raw string) string {
	return filepath.FromSlash(strings.ReplaceAll(raw, `\`, `/`))
}
