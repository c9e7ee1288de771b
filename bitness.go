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

// PE/COFF header layout used for machine detection.
const (
	dosHeaderSize   = 64     // IMAGE_DOS_HEADER size
	dosLfanewOffset = 0x3c   // e_lfanew field offset
	peSignatureSize = 4      // "PE\0\0"
	machineI386     = 0x014c // IMAGE_FILE_MACHINE_I386
	maxLfanew       = 1 << 20
)

var (
	dosMagic    = []byte("MZ")
	peSignature = []byte("PE\x00\x00")
)

// Bitness is target architecture width of a plugin binary.
type Bitness uint8

// Plugin architectures. Zero value means not classified.
const (
	Bitness32 Bitness = iota + 1
	Bitness64
)

// String returns archive folder name for bitness.
func (b Bitness) String() string {
	switch b {
	case Bitness32:
		return "32bit"
	case Bitness64:
		return "64bit"
	default:
		return ""
	}
}

// ClassifyBinary reads the PE header of path and reports its bitness.
// Only the DOS header, PE signature and machine field are read; the file
// is closed before return.
func ClassifyBinary(path string) (Bitness, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open plugin binary: %w", err)
	}
	defer func() { _ = f.Close() }()

	machine, err := ReadMachineType(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	return bitnessFromMachine(machine), nil
}

// ReadMachineType returns the COFF Machine field of a PE image.
func ReadMachineType(ra io.ReaderAt) (uint16, error) {
	if ra == nil {
		return 0, fmt.Errorf("%w: nil reader", ErrBinaryHeader)
	}

	dos := make([]byte, dosHeaderSize)
	if _, err := ra.ReadAt(dos, 0); err != nil {
		return 0, fmt.Errorf("%w: read DOS header: %w", ErrBinaryHeader, err)
	}
	if !bytes.Equal(dos[:2], dosMagic) {
		return 0, fmt.Errorf("%w: missing MZ signature", ErrBinaryHeader)
	}

	lfanew := binary.LittleEndian.Uint32(dos[dosLfanewOffset : dosLfanewOffset+4])
	if lfanew < 2 || lfanew > maxLfanew {
		return 0, fmt.Errorf("%w: PE header offset %#x out of range", ErrBinaryHeader, lfanew)
	}

	// PE signature is directly followed by IMAGE_FILE_HEADER.Machine.
	buf := make([]byte, peSignatureSize+2)
	if _, err := ra.ReadAt(buf, int64(lfanew)); err != nil {
		return 0, fmt.Errorf("%w: read PE signature: %w", ErrBinaryHeader, err)
	}
	if !bytes.Equal(buf[:peSignatureSize], peSignature) {
		return 0, fmt.Errorf("%w: not a valid PE file", ErrBinaryHeader)
	}

	return binary.LittleEndian.Uint16(buf[peSignatureSize:]), nil
}

// bitnessFromMachine maps i386 to 32-bit and everything else to 64-bit.
func bitnessFromMachine(machine uint16) Bitness {
	if machine == machineI386 {
		return Bitness32
	}

	return Bitness64
}
