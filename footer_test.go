// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"bytes"
	"errors"
	"os"
	"testing"
)

func TestFooterBinary(t *testing.T) {
	t.Parallel()

	data, err := Footer{Size: 0x0102}.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	want := []byte{0x02, 0x01, 0, 0, 0, 0, 0, 0, 0x00, 'R', 'M', 'S', 'K', 'I', 'N', 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("MarshalBinary=% X, want % X", data, want)
	}

	var f Footer
	if err := f.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if f.Size != 0x0102 {
		t.Fatalf("Size=%d", f.Size)
	}

	if err := f.UnmarshalBinary(data[:8]); !errors.Is(err, ErrFooterTooShort) {
		t.Fatalf("expected ErrFooterTooShort, got %v", err)
	}

	bad := append([]byte(nil), data...)
	bad[9] = 'X'
	if err := f.UnmarshalBinary(bad); !errors.Is(err, ErrInvalidFooterTag) {
		t.Fatalf("expected ErrInvalidFooterTag, got %v", err)
	}
}

func TestAppendFooter(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("PK-archive-"), 37)
	path := writeTestFile(t, t.TempDir(), "a.rmskin", body)

	footer, err := AppendFooter(path)
	if err != nil {
		t.Fatalf("AppendFooter: %v", err)
	}
	if footer.Size != int64(len(body)) {
		t.Fatalf("footer.Size=%d, want %d", footer.Size, len(body))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if int64(len(raw)) != footer.Size+FooterSize {
		t.Fatalf("file size=%d, want %d", len(raw), footer.Size+FooterSize)
	}
	if !bytes.Equal(raw[:len(body)], body) {
		t.Fatal("archive bytes changed")
	}

	want, _ := footer.MarshalBinary()
	if !bytes.Equal(raw[len(raw)-FooterSize:], want) {
		t.Fatalf("tail=% X, want % X", raw[len(raw)-FooterSize:], want)
	}

	verified, err := VerifyFooter(path)
	if err != nil {
		t.Fatalf("VerifyFooter: %v", err)
	}
	if verified != footer {
		t.Fatalf("VerifyFooter=%+v, want %+v", verified, footer)
	}
}

func TestAppendFooter_Twice(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, t.TempDir(), "b.rmskin", []byte("archive"))

	if _, err := AppendFooter(path); err != nil {
		t.Fatalf("AppendFooter #1: %v", err)
	}
	second, err := AppendFooter(path)
	if err != nil {
		t.Fatalf("AppendFooter #2: %v", err)
	}
	if second.Size != int64(len("archive"))+FooterSize {
		t.Fatalf("second footer size=%d", second.Size)
	}

	// the last footer still describes everything before it
	if _, err := VerifyFooter(path); err != nil {
		t.Fatalf("VerifyFooter: %v", err)
	}
}

func TestVerifyFooter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("short", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "s.rmskin", []byte("tiny"))
		if _, err := ReadFooter(path); !errors.Is(err, ErrFooterTooShort) {
			t.Fatalf("expected ErrFooterTooShort, got %v", err)
		}
	})

	t.Run("no tag", func(t *testing.T) {
		t.Parallel()

		path := writeTestFile(t, t.TempDir(), "n.rmskin", bytes.Repeat([]byte{0xAA}, 64))
		if _, err := VerifyFooter(path); !errors.Is(err, ErrInvalidFooterTag) {
			t.Fatalf("expected ErrInvalidFooterTag, got %v", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		t.Parallel()

		data, _ := Footer{Size: 3}.MarshalBinary()
		path := writeTestFile(t, t.TempDir(), "m.rmskin", append([]byte("archive"), data...))

		footer, err := ReadFooter(path)
		if err != nil || footer.Size != 3 {
			t.Fatalf("ReadFooter=%+v, %v", footer, err)
		}
		if _, err := VerifyFooter(path); !errors.Is(err, ErrFooterSizeMismatch) {
			t.Fatalf("expected ErrFooterSizeMismatch, got %v", err)
		}
	})
}
