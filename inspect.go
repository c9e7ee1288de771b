// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// EntryInfo describes a single archive member of a built package.
type EntryInfo struct {
	// Path is the member path inside the archive.
	Path string `json:"path" yaml:"path"`
	// ModTime is member modification time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// CompressedSize is stored payload size in bytes.
	CompressedSize uint64 `json:"compressed_size" yaml:"compressed_size"`
	// UncompressedSize is original payload size in bytes.
	UncompressedSize uint64 `json:"uncompressed_size" yaml:"uncompressed_size"`
	// Method is ZIP compression method id.
	Method uint16 `json:"method" yaml:"method"`
}

// PackageInfo is the verified footer and member listing of a package.
type PackageInfo struct {
	// Entries are archive members in central directory order.
	Entries []EntryInfo `json:"entries" yaml:"entries"`
	// Footer is the verified trailer.
	Footer Footer `json:"footer" yaml:"footer"`
	// Size is full package file size including footer.
	Size int64 `json:"size" yaml:"size"`
}

// Inspect verifies the package footer and lists archive members without extracting payloads.
func Inspect(path string) (*PackageInfo, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return InspectReaderAt(f, size)
}

// InspectReaderAt verifies the footer and lists members from a random-access source.
func InspectReaderAt(ra io.ReaderAt, size int64) (*PackageInfo, error) {
	footer, err := verifyFooterAt(ra, size)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(io.NewSectionReader(ra, 0, footer.Size), footer.Size)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make([]EntryInfo, 0, len(zr.File))
	for _, file := range zr.File {
		entries = append(entries, EntryInfo{
			Path:             file.Name,
			ModTime:          file.Modified,
			CompressedSize:   file.CompressedSize64,
			UncompressedSize: file.UncompressedSize64,
			Method:           file.Method,
		})
	}

	return &PackageInfo{
		Entries: entries,
		Footer:  footer,
		Size:    size,
	}, nil
}
