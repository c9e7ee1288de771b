// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/ini.v1"
)

// Manifest section and key names.
const (
	ManifestSection = "rmskin"

	keyVersion  = "Version"
	keyAuthor   = "Author"
	keyName     = "Name"
	keyLoadType = "LoadType"
	keyLoad     = "Load"

	loadTypeSkin = "Skin"
)

// manifestLoadOptions keep Rainmeter values verbatim: ";" and "#" are valid
// in values, quotes are part of the value and a trailing "\" is part of a
// path, not a line continuation.
var manifestLoadOptions = ini.LoadOptions{
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	KeyValueDelimiters:      "=",
}

// Manifest is a typed view of the [rmskin] section of RMSKIN.ini.
// Blank values are treated as absent. Other sections and keys are kept
// in the source bytes and written back unchanged.
type Manifest struct {
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	LoadType string `json:"load_type,omitempty" yaml:"load_type,omitempty"`
	Load     string `json:"load,omitempty" yaml:"load,omitempty"`

	// source is UTF-8 manifest text as loaded.
	source []byte
}

// Reconciled is the manifest after defaults are applied and the build copy is written.
type Reconciled struct {
	// Manifest is the reconciled record.
	Manifest *Manifest `json:"manifest" yaml:"manifest"`
	// Name is the package base name.
	Name string `json:"name" yaml:"name"`
	// Version is the resolved package version.
	Version string `json:"version" yaml:"version"`
	// Path is the written build copy of the manifest.
	Path string `json:"path" yaml:"path"`
}

// ArchiveName returns the package file name "<Name>_<Version>.rmskin".
func (r *Reconciled) ArchiveName() string {
	return r.Name + "_" + r.Version + Extension
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingManifest, path)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return ParseManifest(raw)
}

// ParseManifest parses manifest text. UTF-16 and UTF-8 BOM encoded input is transcoded to UTF-8.
func ParseManifest(raw []byte) (*Manifest, error) {
	text, err := decodeManifestText(raw)
	if err != nil {
		return nil, err
	}

	file, err := ini.LoadSources(manifestLoadOptions, text)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	sec := findSection(file, ManifestSection)
	if sec == nil {
		return nil, ErrMalformedManifest
	}

	return &Manifest{
		Version:  keyValue(sec, keyVersion),
		Author:   keyValue(sec, keyAuthor),
		Name:     keyValue(sec, keyName),
		LoadType: keyValue(sec, keyLoadType),
		Load:     keyValue(sec, keyLoad),
		source:   text,
	}, nil
}

// Reconcile loads root manifest, fills missing fields, validates the
// on-install load target, and writes the result to buildDir.
// The source manifest is never modified.
func Reconcile(root, buildDir string, opts ReconcileOptions) (*Reconciled, error) {
	logger := loggerOrDiscard(opts.Logger)

	m, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		return nil, err
	}

	if opts.Title == "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root: %w", err)
		}

		opts.Title = filepath.Base(abs)
	}

	rec, err := m.Resolve(opts)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Using Name '%s' and Version '%s'", rec.Name, rec.Version))

	if err := rec.CheckLoadTarget(root); err != nil {
		logger.Error("on-install load target does not exist", "load_type", rec.LoadType, "load", rec.Load)
		return nil, err
	}

	out := filepath.Join(buildDir, ManifestName)
	if err := rec.WriteFile(out); err != nil {
		return nil, err
	}
	logger.Debug("wrote reconciled manifest", "path", out)

	return &Reconciled{
		Manifest: rec,
		Name:     rec.Name,
		Version:  rec.Version,
		Path:     out,
	}, nil
}

// Resolve returns a copy of m with Version, Author and Name resolved from opts.
// m itself is not modified.
func (m *Manifest) Resolve(opts ReconcileOptions) (*Manifest, error) {
	out := *m

	if out.Version == "" {
		out.Version = strings.TrimSpace(opts.Version)
	}
	if out.Version == "" || IsAutoVersion(out.Version) {
		if opts.DeriveVersion == nil {
			return nil, ErrUnresolvedVersion
		}

		derived, err := opts.DeriveVersion()
		if err != nil {
			return nil, fmt.Errorf("derive version: %w", err)
		}

		out.Version = strings.TrimSpace(derived)
		if out.Version == "" || IsAutoVersion(out.Version) {
			return nil, ErrUnresolvedVersion
		}
	}

	if out.Author == "" {
		out.Author = strings.TrimSpace(opts.Author)
	}
	if out.Author == "" {
		out.Author = DefaultAuthor
	}

	if out.Name == "" {
		out.Name = strings.TrimSpace(opts.Title)
	}
	if out.Name == "" {
		return nil, fmt.Errorf("%w: no Name in manifest and no title given", ErrEmptyArchiveName)
	}

	return &out, nil
}

// LoadTargetPath returns the file the installer activates after install, or "" when LoadType is empty.
// "Skin" targets are files under Skins; other types name a folder holding Rainmeter.ini.
func (m *Manifest) LoadTargetPath(root string) string {
	if m.LoadType == "" {
		return ""
	}

	target := filepath.Join(root, m.LoadType+"s", hostPath(m.Load))
	if m.LoadType != loadTypeSkin {
		target = filepath.Join(target, LayoutLoadFile)
	}

	return target
}

// CheckLoadTarget verifies the on-install load target exists as a regular file.
func (m *Manifest) CheckLoadTarget(root string) error {
	target := m.LoadTargetPath(root)
	if target == "" {
		return nil
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingLoadTarget, target)
		}

		return fmt.Errorf("stat load target: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a file", ErrMissingLoadTarget, target)
	}

	return nil
}

// Encode writes the manifest source with Version, Author and Name replaced
// by the record values. Every other line is copied byte for byte; missing keys
// are appended after the last key of the [rmskin] section.
func (m *Manifest) Encode(w io.Writer) error {
	overrides := [...]struct{ key, value string }{
		{keyVersion, m.Version},
		{keyAuthor, m.Author},
		{keyName, m.Name},
	}

	lines := splitLines(m.source)
	eol := lineEnding(m.source)

	out := make([]string, 0, len(lines)+len(overrides)+1)
	seen := make(map[string]bool, len(overrides))
	inManifest := false
	inserted := false
	insertAt := -1

	appendMissing := func() {
		var missing []string
		for _, kv := range overrides {
			if kv.value != "" && !seen[strings.ToLower(kv.key)] {
				missing = append(missing, kv.key+"="+kv.value+eol)
			}
		}

		if !strings.HasSuffix(out[insertAt], "\n") {
			out[insertAt] += eol
		}

		rest := append(missing, out[insertAt+1:]...)
		out = append(out[:insertAt+1], rest...)
		inserted = true
	}

	for _, line := range lines {
		body := strings.TrimSpace(line)

		if name, ok := sectionName(body); ok {
			if inManifest && !inserted {
				appendMissing()
			}

			inManifest = strings.EqualFold(name, ManifestSection)
			out = append(out, line)
			if inManifest && !inserted {
				insertAt = len(out) - 1
			}
			continue
		}

		if inManifest {
			if key, prefix, ok := splitKeyLine(line); ok {
				for _, kv := range overrides {
					if kv.value == "" || !strings.EqualFold(key, kv.key) {
						continue
					}

					seen[strings.ToLower(kv.key)] = true
					line = prefix + kv.value + trailingEOL(line)
					break
				}

				if !inserted {
					insertAt = len(out)
				}
			}
		}

		out = append(out, line)
	}

	switch {
	case inManifest && !inserted:
		appendMissing()
	case insertAt < 0:
		if last := len(out) - 1; last >= 0 && out[last] != "" && !strings.HasSuffix(out[last], "\n") {
			out[last] += eol
		}
		out = append(out, "["+ManifestSection+"]"+eol)
		insertAt = len(out) - 1
		appendMissing()
	}

	for _, line := range out {
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}

	return nil
}

// WriteFile encodes the manifest to path.
func (m *Manifest) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest copy: %w", err)
	}

	return nil
}

// findSection looks a section up case-insensitively.
func findSection(file *ini.File, name string) *ini.Section {
	for _, sec := range file.Sections() {
		if strings.EqualFold(sec.Name(), name) {
			return sec
		}
	}

	return nil
}

// findKey looks a key up case-insensitively.
func findKey(sec *ini.Section, name string) *ini.Key {
	for _, key := range sec.Keys() {
		if strings.EqualFold(key.Name(), name) {
			return key
		}
	}

	return nil
}

// keyValue returns the trimmed key value without one surrounding pair of
// double quotes, or "" when key is absent.
func keyValue(sec *ini.Section, name string) string {
	key := findKey(sec, name)
	if key == nil {
		return ""
	}

	value := strings.TrimSpace(key.String())
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = strings.TrimSpace(value[1 : len(value)-1])
	}

	return value
}

// splitLines splits text after every "\n", keeping line endings.
func splitLines(text []byte) []string {
	if len(text) == 0 {
		return nil
	}

	return strings.SplitAfter(string(text), "\n")
}

// lineEnding returns the first line ending used in text, CRLF by default.
func lineEnding(text []byte) string {
	idx := bytes.IndexByte(text, '\n')
	if idx > 0 && text[idx-1] != '\r' {
		return "\n"
	}

	return "\r\n"
}

// trailingEOL returns the line ending of line, if any.
func trailingEOL(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	default:
		return ""
	}
}

// sectionName returns the name of a "[section]" header line.
func sectionName(body string) (string, bool) {
	if !strings.HasPrefix(body, "[") {
		return "", false
	}

	end := strings.IndexByte(body, ']')
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(body[1:end]), true
}

// splitKeyLine returns the key of a "key=value" line and the line text up to
// the value, leading spaces after "=" included. Comments are not key lines.
func splitKeyLine(line string) (key string, prefix string, ok bool) {
	body := strings.TrimSpace(line)
	if body == "" || body[0] == ';' || body[0] == '#' {
		return "", "", false
	}

	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}

	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", false
	}

	valueStart := idx + 1
	for valueStart < len(line) && (line[valueStart] == ' ' || line[valueStart] == '\t') {
		valueStart++
	}

	return key, line[:valueStart], true
}

// decodeManifestText transcodes BOM-marked UTF-8/UTF-16 text into plain UTF-8.
// Input without BOM is returned as is.
func decodeManifestText(raw []byte) ([]byte, error) {
	if !hasBOM(raw) {
		return raw, nil
	}

	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, fmt.Errorf("decode manifest text: %w", err)
	}

	return text, nil
}

// hasBOM reports whether raw starts with a UTF-8 or UTF-16 byte order mark.
func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xef, 0xbb, 0xbf}) ||
		bytes.HasPrefix(raw, []byte{0xff, 0xfe}) ||
		bytes.HasPrefix(raw, []byte{0xfe, 0xff})
}
