// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// FooterSize is the fixed trailer length appended after the ZIP container.
const FooterSize = 16

// footerTag is the NUL-padded "RMSKIN" marker closing every package.
var footerTag = [8]byte{0x00, 'R', 'M', 'S', 'K', 'I', 'N', 0x00}

// Footer is the trailer recording archive size before the footer.
type Footer struct {
	// Size is archive byte length before the footer was appended.
	Size int64 `json:"size" yaml:"size"`
}

// MarshalBinary encodes footer as 8-byte little-endian size followed by the tag.
func (f Footer) MarshalBinary() ([]byte, error) {
	out := make([]byte, FooterSize)
	binary.LittleEndian.PutUint64(out[0:8], uint64(f.Size)) //nolint:gosec // size is a non-negative file length
	copy(out[8:], footerTag[:])
	return out, nil
}

// UnmarshalBinary decodes a 16-byte footer and validates the tag.
func (f *Footer) UnmarshalBinary(data []byte) error {
	if len(data) != FooterSize {
		return fmt.Errorf("%w: got %d bytes", ErrFooterTooShort, len(data))
	}
	if !bytes.Equal(data[8:], footerTag[:]) {
		return ErrInvalidFooterTag
	}

	f.Size = int64(binary.LittleEndian.Uint64(data[0:8])) //nolint:gosec // stored as signed int64
	return nil
}

// AppendFooter appends the footer to a finished, closed archive and returns it.
// Every call appends a new footer; call it exactly once per archive.
func AppendFooter(path string) (Footer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Footer{}, fmt.Errorf("stat archive: %w", err)
	}

	footer := Footer{Size: info.Size()}
	data, err := footer.MarshalBinary()
	if err != nil {
		return Footer{}, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return Footer{}, fmt.Errorf("open for footer: %w", err)
	}
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	if _, err := f.Write(data); err != nil {
		return Footer{}, fmt.Errorf("write footer: %w", err)
	}

	if err := f.Sync(); err != nil {
		return Footer{}, fmt.Errorf("sync footer: %w", err)
	}

	if err := f.Close(); err != nil {
		return Footer{}, fmt.Errorf("close archive: %w", err)
	}
	f = nil

	return footer, nil
}

// ReadFooter reads the trailing footer of a package without validating the size.
func ReadFooter(path string) (Footer, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return Footer{}, err
	}
	defer func() { _ = f.Close() }()

	return readFooterAt(f, size)
}

// VerifyFooter reads the footer and checks that it records the pre-footer file size.
func VerifyFooter(path string) (Footer, error) {
	f, size, err := openFileWithSize(path)
	if err != nil {
		return Footer{}, err
	}
	defer func() { _ = f.Close() }()

	return verifyFooterAt(f, size)
}

// readFooterAt decodes the last FooterSize bytes of ra.
func readFooterAt(ra io.ReaderAt, size int64) (Footer, error) {
	if size < FooterSize {
		return Footer{}, ErrFooterTooShort
	}

	tail := make([]byte, FooterSize)
	if _, err := ra.ReadAt(tail, size-FooterSize); err != nil {
		return Footer{}, fmt.Errorf("read footer: %w", err)
	}

	var footer Footer
	if err := footer.UnmarshalBinary(tail); err != nil {
		return Footer{}, err
	}

	return footer, nil
}

// verifyFooterAt decodes the footer and compares recorded and actual sizes.
func verifyFooterAt(ra io.ReaderAt, size int64) (Footer, error) {
	footer, err := readFooterAt(ra, size)
	if err != nil {
		return Footer{}, err
	}

	if footer.Size != size-FooterSize {
		return footer, fmt.Errorf("%w: recorded %d, actual %d", ErrFooterSizeMismatch, footer.Size, size-FooterSize)
	}

	return footer, nil
}

// openFileWithSize opens a file and returns a handle plus current size.
func openFileWithSize(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open package: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("stat: %w", err)
	}

	return f, fi.Size(), nil
}
