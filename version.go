// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import "strings"

// Version derivation constants.
const (
	// VersionAuto requests version derivation from CI or VCS context.
	VersionAuto = "auto"
	// FallbackVersion is used when no tag or commit is known.
	FallbackVersion = "x0x.y0y"
	// DefaultAuthor is used when neither manifest nor caller names an author.
	DefaultAuthor = "Unknown"

	tagRefPrefix   = "refs/tags/"
	shortCommitLen = 8
)

// IsAutoVersion reports whether version requests derivation.
func IsAutoVersion(version string) bool {
	return strings.HasSuffix(strings.TrimSpace(version), VersionAuto)
}

// DeriveVersion resolves a release version from a git ref and commit SHA.
// Tag refs yield the tag name (see TrimVersionTag); otherwise the last
// 8 characters of sha are used, and FallbackVersion when both are empty.
func DeriveVersion(ref, sha string) string {
	ref = strings.TrimSpace(ref)
	if tag, ok := strings.CutPrefix(ref, tagRefPrefix); ok && tag != "" {
		return TrimVersionTag(tag)
	}

	sha = strings.TrimSpace(sha)
	if sha == "" {
		return FallbackVersion
	}

	if len(sha) > shortCommitLen {
		return sha[len(sha)-shortCommitLen:]
	}

	return sha
}

// TrimVersionTag strips a leading "v" from tags like "v1.2.3".
func TrimVersionTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if len(tag) > 1 && (tag[0] == 'v' || tag[0] == 'V') && tag[1] >= '0' && tag[1] <= '9' {
		return tag[1:]
	}

	return tag
}
