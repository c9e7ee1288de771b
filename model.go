// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package rmskin

import (
	"log/slog"
	"time"

	"github.com/woozymasta/pathrules"
)

// Fixed file names and package layout constants.
const (
	// ManifestName is the package manifest file name at repository root and in archive.
	ManifestName = "RMSKIN.ini"
	// HeaderImageName is the optional installer header image name.
	HeaderImageName = "RMSKIN.bmp"
	// Extension is the package file extension.
	Extension = ".rmskin"
	// LayoutLoadFile is the file loaded for non-skin on-install targets.
	LayoutLoadFile = "Rainmeter.ini"
)

// Header image requirements.
const (
	HeaderImageWidth  = 400
	HeaderImageHeight = 60
)

// Kind is a structural component folder recognized at repository root.
type Kind string

// Structural component kinds in inventory definition order.
const (
	KindSkins   Kind = "Skins"
	KindLayouts Kind = "Layouts"
	KindPlugins Kind = "Plugins"
	KindVault   Kind = "@Vault"
)

// structuralKinds lists kinds in the order they are written to archive.
var structuralKinds = [...]Kind{KindSkins, KindLayouts, KindPlugins, KindVault}

// Inventory records which components were found at repository root.
// It is built once by Discover and only read afterwards.
type Inventory struct {
	// Skins is the number of skin folders.
	Skins int `json:"skins" yaml:"skins"`
	// Layouts is the number of layout items.
	Layouts int `json:"layouts" yaml:"layouts"`
	// Vault is the number of @Vault items.
	Vault int `json:"vault" yaml:"vault"`
	// Plugins reports whether Plugins holds at least one plugin folder.
	Plugins bool `json:"plugins" yaml:"plugins"`
	// HasManifest reports whether RMSKIN.ini exists at root.
	HasManifest bool `json:"has_manifest" yaml:"has_manifest"`
	// HasHeaderImage reports whether RMSKIN.bmp exists at root.
	HasHeaderImage bool `json:"has_header_image" yaml:"has_header_image"`
}

// Count returns item count for folder kinds; Plugins reports 1 when present.
func (inv Inventory) Count(kind Kind) int {
	switch kind {
	case KindSkins:
		return inv.Skins
	case KindLayouts:
		return inv.Layouts
	case KindVault:
		return inv.Vault
	case KindPlugins:
		if inv.Plugins {
			return 1
		}
	}

	return 0
}

// Present reports whether kind has a truthy presence value.
func (inv Inventory) Present(kind Kind) bool {
	return inv.Count(kind) > 0
}

// Kinds returns present structural kinds in definition order.
func (inv Inventory) Kinds() []Kind {
	out := make([]Kind, 0, len(structuralKinds))
	for _, kind := range structuralKinds {
		if inv.Present(kind) {
			out = append(out, kind)
		}
	}

	return out
}

// HasStructure reports whether at least one structural kind is present.
func (inv Inventory) HasStructure() bool {
	return len(inv.Kinds()) > 0
}

// Member is one archive entry: a source file and its path inside the archive.
type Member struct {
	// Source is absolute or root-joined path of the file on disk.
	Source string `json:"source" yaml:"source"`
	// Path is slash-separated path inside the archive.
	Path string `json:"path" yaml:"path"`
	// Bitness is set for plugin binaries routed into architecture folders.
	Bitness Bitness `json:"bitness,omitempty" yaml:"bitness,omitempty"`
}

// MemberProgress contains one completed member write event.
type MemberProgress struct {
	// Path is entry path written to archive.
	Path string `json:"path" yaml:"path"`
	// Size is uncompressed member size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// Index is zero-based member position.
	Index int `json:"index" yaml:"index"`
	// Total is number of planned members.
	Total int `json:"total" yaml:"total"`
}

// DiscoverOptions configures component discovery.
type DiscoverOptions struct {
	// Logger receives discovery lines; nil disables logging.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// ReconcileOptions carries caller-supplied manifest defaults.
type ReconcileOptions struct {
	// DeriveVersion resolves "auto" versions; nil leaves the literal value unresolved.
	DeriveVersion func() (string, error) `json:"-" yaml:"-"`
	// Logger receives reconcile lines; nil disables logging.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Title is used as package name when manifest has no Name.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Version is used when manifest has no Version. "auto" requests derivation.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Author is used when manifest has no Author.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// AssembleOptions configures archive assembly.
type AssembleOptions struct {
	// OnEntryDone is called after one member is fully written.
	OnEntryDone func(entry MemberProgress) `json:"-" yaml:"-"`
	// Logger receives assembly lines; nil disables logging.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Root is the repository root holding component folders.
	Root string `json:"root" yaml:"root"`
	// BuildDir holds reconciled manifest and normalized header image.
	BuildDir string `json:"build_dir" yaml:"build_dir"`
	// OutputDir receives the archive; empty means Root.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	// ArchiveName is the output file name.
	ArchiveName string `json:"archive_name" yaml:"archive_name"`
	// Exclude defines ordered path rules removing component files from archive.
	Exclude []pathrules.Rule `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// AssembleResult contains assembled archive statistics.
type AssembleResult struct {
	// Path is the archive file path.
	Path string `json:"path" yaml:"path"`
	// Members are written entries in archive order.
	Members []Member `json:"members" yaml:"members"`
	// Size is archive size before footer.
	Size int64 `json:"size" yaml:"size"`
	// Duration is end-to-end assembly duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// BuildOptions configures the full package pipeline.
type BuildOptions struct {
	// OnEntryDone is called after one member is fully written.
	OnEntryDone func(entry MemberProgress) `json:"-" yaml:"-"`
	// DeriveVersion resolves "auto" versions.
	DeriveVersion func() (string, error) `json:"-" yaml:"-"`
	// Logger receives pipeline lines; nil disables logging.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Root is the repository root; empty means working directory.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`
	// OutputDir receives the archive; empty means Root.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	// Title is fallback package name.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Author is fallback author.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
	// Version is fallback version; "auto" requests derivation.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Exclude defines ordered path rules removing component files from archive.
	Exclude []pathrules.Rule `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// BuildResult describes a finished package.
type BuildResult struct {
	// ArchivePath is the full path of the written package.
	ArchivePath string `json:"archive_path" yaml:"archive_path"`
	// ArchiveName is the package file name.
	ArchiveName string `json:"archive_name" yaml:"archive_name"`
	// Name is the resolved package name.
	Name string `json:"name" yaml:"name"`
	// Version is the resolved package version.
	Version string `json:"version" yaml:"version"`
	// Members are written entries in archive order.
	Members []Member `json:"members" yaml:"members"`
	// Inventory is the discovered component set.
	Inventory Inventory `json:"inventory" yaml:"inventory"`
	// Footer is the appended trailer.
	Footer Footer `json:"footer" yaml:"footer"`
}

// applyDefaults fills zero-valued build options with defaults.
func (opts *BuildOptions) applyDefaults() {
	if opts.Root == "" {
		opts.Root = "."
	}

	if opts.Version == "" {
		opts.Version = VersionAuto
	}

	opts.Logger = loggerOrDiscard(opts.Logger)
}

// applyDefaults fills zero-valued assemble options with defaults.
func (opts *AssembleOptions) applyDefaults() {
	if opts.OutputDir == "" {
		opts.OutputDir = opts.Root
	}

	opts.Logger = loggerOrDiscard(opts.Logger)
}

// loggerOrDiscard returns l, or a logger dropping every record when l is nil.
func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}

	return l
}
