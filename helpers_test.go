// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

const (
	machineAMD64 = 0x8664

	testManifest = "[rmskin]\r\nName=Test\r\nAuthor=tester\r\nVersion=1.0\r\n"
)

// writeTestFile writes data to root/rel creating parent folders.
func writeTestFile(t *testing.T, root, rel string, data []byte) string {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", rel, err)
	}

	return full
}

// mkdirTest creates root/rel.
func mkdirTest(t *testing.T, root, rel string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", rel, err)
	}
}

// peImage returns a minimal PE header with the given COFF machine field.
func peImage(machine uint16) []byte {
	const lfanew = 0x80

	buf := make([]byte, lfanew+24)
	copy(buf, "MZ")
	binary.LittleEndian.PutUint32(buf[dosLfanewOffset:], lfanew)
	copy(buf[lfanew:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(buf[lfanew+4:], machine)

	return buf
}

// newSkinRepo creates a repository with one skin and the given manifest text.
func newSkinRepo(t *testing.T, manifest string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "MySkin")
	writeTestFile(t, root, "Skins/MySkin/Main.ini", []byte("[Rainmeter]\r\nUpdate=1000\r\n"))
	if manifest != "" {
		writeTestFile(t, root, ManifestName, []byte(manifest))
	}

	return root
}

// staticVersion returns a DeriveVersion func yielding v.
func staticVersion(v string) func() (string, error) {
	return func() (string, error) { return v, nil }
}
