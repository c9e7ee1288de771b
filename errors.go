// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import "errors"

// Sentinel errors for package build operations. Use errors.Is in callers.
var (
	// ErrMalformedRepository means none of Skins, Layouts, Plugins or @Vault was found under root.
	ErrMalformedRepository = errors.New("malformed repository: found no Skins, Layouts, Plugins, or @Vault assets")
	// ErrMissingManifest means RMSKIN.ini is not present in the repository root.
	ErrMissingManifest = errors.New("malformed repository: RMSKIN.ini file not found")
	// ErrMalformedManifest means the manifest has no [rmskin] section.
	ErrMalformedManifest = errors.New("malformed manifest: missing rmskin section")
	// ErrMissingLoadTarget means the file declared to load on install does not exist.
	ErrMissingLoadTarget = errors.New("missing specified file loaded upon install")
	// ErrUnresolvedVersion means version is "auto" and no derivation source is configured.
	ErrUnresolvedVersion = errors.New("version is auto but no version source is configured")
	// ErrBinaryHeader means a plugin binary has a truncated or foreign header.
	ErrBinaryHeader = errors.New("invalid plugin binary header")
	// ErrUnsupportedHeaderImage means RMSKIN.bmp is not an uncompressed 8, 24 or 32-bit bitmap.
	ErrUnsupportedHeaderImage = errors.New("unsupported header image: need uncompressed 8, 24 or 32-bit BMP")
	// ErrDuplicateMember means two files resolve to the same archive path (case-insensitive).
	ErrDuplicateMember = errors.New("duplicate archive member path")
	// ErrInvalidMemberPath means a member path is empty or invalid after normalization.
	ErrInvalidMemberPath = errors.New("invalid archive member path")
	// ErrEmptyArchiveName means the output archive file name is empty.
	ErrEmptyArchiveName = errors.New("archive name is empty")
	// ErrFooterTooShort means the file is too short to hold a footer.
	ErrFooterTooShort = errors.New("file too short for footer")
	// ErrInvalidFooterTag means the last 8 bytes are not the RMSKIN tag.
	ErrInvalidFooterTag = errors.New("footer tag mismatch")
	// ErrFooterSizeMismatch means the recorded archive size does not match the file.
	ErrFooterSizeMismatch = errors.New("footer size mismatch")
)
