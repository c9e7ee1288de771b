// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, Level: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("Resizing header image to 400x60")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record below level:\n%s", out)
	}
	if out != "WARN "+Name+": Resizing header image to 400x60\n" {
		t.Fatalf("unexpected output:\n%q", out)
	}
}

func TestNew_ConsoleColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	color := true
	logger, err := New(Options{Output: &buf, Color: &color})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Error("boom")
	if !strings.Contains(buf.String(), colorRed+"ERROR"+colorReset) {
		t.Fatalf("missing colored level:\n%q", buf.String())
	}
}

func TestNew_ConsoleAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.WithGroup("entry").Debug("Archiving file", "path", "Skins/My Skin/a.ini", "size", 12)

	want := "DEBUG " + Name + `: Archiving file entry.path="Skins/My Skin/a.ini" entry.size=12` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("output=%q, want %q", got, want)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, Format: "json", Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("Archiving file", "path", "Skins/A/a.ini")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, buf.String())
	}
	if record["msg"] != "Archiving file" || record["component"] != Name || record["path"] != "Skins/A/a.ini" {
		t.Fatalf("record=%v", record)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	} {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", in, got, want)
		}
	}
}
