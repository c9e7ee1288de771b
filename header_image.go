// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// NormalizeHeaderImage prepares root RMSKIN.bmp for packaging and writes it to buildDir.
// Images not sized 400x60 are resized; images that are not opaque RGB are converted.
// It reports false without error when root has no header image.
func NormalizeHeaderImage(root, buildDir string, logger *slog.Logger) (bool, error) {
	logger = loggerOrDiscard(logger)

	src := filepath.Join(root, HeaderImageName)
	img, bitsPerPixel, err := readBMP(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}
	logger.Debug("checking header image", "path", src)

	// Color is judged on the source image, before any resize.
	rgb := isOpaqueRGB(img, bitsPerPixel)
	if needsResize(img) {
		logger.Warn(fmt.Sprintf("Resizing header image to %dx%d", HeaderImageWidth, HeaderImageHeight))
		img = resizeNearest(img, HeaderImageWidth, HeaderImageHeight)
	}

	if !rgb {
		logger.Warn("Correcting the color space in the header image")
	}

	// Always encoded from an opaque RGBA canvas, which bmp writes as 24-bit.
	out := toOpaqueRGB(img)
	if err := writeBMP(filepath.Join(buildDir, HeaderImageName), out); err != nil {
		return false, err
	}

	return true, nil
}

// readBMP reads and decodes a BMP file and reports its source bit depth.
func readBMP(path string) (image.Image, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open header image: %w", err)
	}

	bitsPerPixel, compression := bmpFormat(raw)
	img, err := bmp.Decode(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, bmp.ErrUnsupported) {
			return nil, 0, fmt.Errorf("%w (%d-bit, compression %d)", ErrUnsupportedHeaderImage, bitsPerPixel, compression)
		}

		return nil, 0, fmt.Errorf("decode header image: %w", err)
	}

	return img, bitsPerPixel, nil
}

// bmpFormat returns bits per pixel and compression from BMP headers, zeros when unknown.
func bmpFormat(raw []byte) (bitsPerPixel int, compression uint32) {
	if len(raw) < 18 || raw[0] != 'B' || raw[1] != 'M' {
		return 0, 0
	}

	// BITMAPCOREHEADER keeps 16-bit dimensions and has no compression field.
	if binary.LittleEndian.Uint32(raw[14:18]) == 12 {
		if len(raw) < 26 {
			return 0, 0
		}

		return int(binary.LittleEndian.Uint16(raw[24:26])), 0
	}

	if len(raw) < 34 {
		return 0, 0
	}

	return int(binary.LittleEndian.Uint16(raw[28:30])), binary.LittleEndian.Uint32(raw[30:34])
}

// writeBMP encodes img to path.
func writeBMP(path string, img image.Image) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create header image: %w", err)
	}

	if err := bmp.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode header image: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close header image: %w", err)
	}

	return nil
}

// needsResize reports whether img differs from required header dimensions.
func needsResize(img image.Image) bool {
	b := img.Bounds()
	return b.Dx() != HeaderImageWidth || b.Dy() != HeaderImageHeight
}

// resizeNearest scales img to w x h using nearest-neighbour sampling.
func resizeNearest(img image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// isOpaqueRGB reports whether img decoded from a bitsPerPixel source is
// three-channel color without transparency. 32-bit sources carry a fourth
// channel even when every pixel is opaque.
func isOpaqueRGB(img image.Image, bitsPerPixel int) bool {
	if bitsPerPixel > 24 {
		return false
	}

	opaque, ok := img.(interface{ Opaque() bool })
	return ok && opaque.Opaque()
}

// toOpaqueRGB flattens img onto a black canvas, dropping alpha.
func toOpaqueRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
