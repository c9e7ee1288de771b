// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

// writeTestBMP encodes img as root/RMSKIN.bmp.
func writeTestBMP(t *testing.T, root string, img image.Image) {
	t.Helper()

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	writeTestFile(t, root, HeaderImageName, buf.Bytes())
}

// readTestBMP decodes path and checks it is a 24-bit bitmap when want24 is set.
func readTestBMP(t *testing.T, path string, want24 bool) image.Image {
	t.Helper()

	img, bitsPerPixel, err := readBMP(path)
	if err != nil {
		t.Fatalf("readBMP: %v", err)
	}
	if want24 && bitsPerPixel != 24 {
		t.Fatalf("%s is %d-bit, want 24-bit", path, bitsPerPixel)
	}

	return img
}

// rawBMP builds an uncompressed bottom-up BMP with a BITMAPINFOHEADER and white pixels.
func rawBMP(w, h int, bitsPerPixel uint16) []byte {
	stride := (w*int(bitsPerPixel)/8 + 3) &^ 3
	pixels := bytes.Repeat([]byte{0xff}, stride*h)

	buf := make([]byte, 54, 54+len(pixels))
	copy(buf, "BM")
	binary.LittleEndian.PutUint32(buf[2:], uint32(54+len(pixels))) //nolint:gosec // test sizes
	binary.LittleEndian.PutUint32(buf[10:], 54)
	binary.LittleEndian.PutUint32(buf[14:], 40)
	binary.LittleEndian.PutUint32(buf[18:], uint32(w)) //nolint:gosec // test sizes
	binary.LittleEndian.PutUint32(buf[22:], uint32(h)) //nolint:gosec // test sizes
	binary.LittleEndian.PutUint16(buf[26:], 1)
	binary.LittleEndian.PutUint16(buf[28:], bitsPerPixel)
	binary.LittleEndian.PutUint32(buf[34:], uint32(len(pixels))) //nolint:gosec // test sizes

	return append(buf, pixels...)
}

func TestNormalizeHeaderImage_ResizeAndColor(t *testing.T) {
	t.Parallel()

	root, buildDir := t.TempDir(), t.TempDir()

	gray := image.NewGray(image.Rect(0, 0, 350, 50))
	for i := range gray.Pix {
		gray.Pix[i] = 0x80
	}
	writeTestBMP(t, root, gray)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ok, err := NormalizeHeaderImage(root, buildDir, logger)
	if err != nil {
		t.Fatalf("NormalizeHeaderImage: %v", err)
	}
	if !ok {
		t.Fatal("NormalizeHeaderImage reported no image")
	}

	out := readTestBMP(t, filepath.Join(buildDir, HeaderImageName), true)
	if b := out.Bounds(); b.Dx() != HeaderImageWidth || b.Dy() != HeaderImageHeight {
		t.Fatalf("output size %dx%d", b.Dx(), b.Dy())
	}

	r, g, b, _ := out.At(10, 10).RGBA()
	if r>>8 != 0x80 || g>>8 != 0x80 || b>>8 != 0x80 {
		t.Fatalf("pixel=%x/%x/%x, want gray 0x80", r>>8, g>>8, b>>8)
	}

	// 8-bit palette sources already hold three color channels
	text := logs.String()
	if !strings.Contains(text, "Resizing header image") || strings.Contains(text, "Correcting the color space") {
		t.Fatalf("unexpected warnings in logs:\n%s", text)
	}

	src := readTestBMP(t, filepath.Join(root, HeaderImageName), false)
	if src.Bounds().Dx() != 350 {
		t.Fatal("source header image modified")
	}
}

func TestNormalizeHeaderImage_CompliantImageKeepsPixels(t *testing.T) {
	t.Parallel()

	root, buildDir := t.TempDir(), t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, HeaderImageWidth, HeaderImageHeight))
	for y := range HeaderImageHeight {
		for x := range HeaderImageWidth {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x33, A: 0xff}) //nolint:gosec // test pattern
		}
	}
	writeTestBMP(t, root, img)

	var logs bytes.Buffer
	ok, err := NormalizeHeaderImage(root, buildDir, slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil || !ok {
		t.Fatalf("NormalizeHeaderImage=%v, %v", ok, err)
	}
	if logs.Len() != 0 {
		t.Fatalf("unexpected warnings:\n%s", logs.String())
	}

	out := readTestBMP(t, filepath.Join(buildDir, HeaderImageName), true)
	if got, want := out.At(123, 45), img.At(123, 45); got != want {
		r1, g1, b1, _ := got.RGBA()
		r2, g2, b2, _ := want.RGBA()
		if r1 != r2 || g1 != g2 || b1 != b2 {
			t.Fatalf("pixel changed: %v != %v", got, want)
		}
	}
}

func TestNormalizeHeaderImage_Absent(t *testing.T) {
	t.Parallel()

	buildDir := t.TempDir()
	ok, err := NormalizeHeaderImage(t.TempDir(), buildDir, nil)
	if err != nil || ok {
		t.Fatalf("NormalizeHeaderImage=%v, %v; want false, nil", ok, err)
	}

	if _, err := os.Stat(filepath.Join(buildDir, HeaderImageName)); !os.IsNotExist(err) {
		t.Fatalf("unexpected output: %v", err)
	}
}

func TestNormalizeHeaderImage_InvalidFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, root, HeaderImageName, []byte("not a bitmap"))

	if _, err := NormalizeHeaderImage(root, t.TempDir(), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNormalizeHeaderImage_FourChannelSource(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  []byte
	}{
		{name: "opaque 32-bit", raw: rawBMP(HeaderImageWidth, HeaderImageHeight, 32)},
		{
			name: "transparent pixels",
			raw: func() []byte {
				img := image.NewNRGBA(image.Rect(0, 0, HeaderImageWidth, HeaderImageHeight))
				img.Set(0, 0, color.NRGBA{R: 0xff, A: 0x80})
				var buf bytes.Buffer
				if err := bmp.Encode(&buf, img); err != nil {
					t.Fatalf("bmp.Encode: %v", err)
				}
				return buf.Bytes()
			}(),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root, buildDir := t.TempDir(), t.TempDir()
			writeTestFile(t, root, HeaderImageName, tc.raw)

			var logs bytes.Buffer
			ok, err := NormalizeHeaderImage(root, buildDir, slog.New(slog.NewTextHandler(&logs, nil)))
			if err != nil || !ok {
				t.Fatalf("NormalizeHeaderImage=%v, %v", ok, err)
			}

			text := logs.String()
			if !strings.Contains(text, "Correcting the color space") || strings.Contains(text, "Resizing") {
				t.Fatalf("unexpected warnings in logs:\n%s", text)
			}

			readTestBMP(t, filepath.Join(buildDir, HeaderImageName), true)
		})
	}
}

func TestNormalizeHeaderImage_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, root, HeaderImageName, rawBMP(HeaderImageWidth, HeaderImageHeight, 16))

	_, err := NormalizeHeaderImage(root, t.TempDir(), nil)
	if !errors.Is(err, ErrUnsupportedHeaderImage) {
		t.Fatalf("expected ErrUnsupportedHeaderImage, got %v", err)
	}
	if !strings.Contains(err.Error(), "16-bit") {
		t.Fatalf("error does not name source depth: %v", err)
	}
}

func TestBMPFormat(t *testing.T) {
	t.Parallel()

	if bpp, compression := bmpFormat(rawBMP(4, 2, 24)); bpp != 24 || compression != 0 {
		t.Fatalf("bmpFormat=%d/%d, want 24/0", bpp, compression)
	}
	if bpp, _ := bmpFormat([]byte("not a bitmap")); bpp != 0 {
		t.Fatalf("bmpFormat(garbage)=%d, want 0", bpp)
	}
}
