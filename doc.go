// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

/*
Package rmskin builds Rainmeter .rmskin packages from a skin repository.
A package is a ZIP archive followed by a fixed 16-byte footer, so installer
tooling can check the archive size and tag without unzipping it.

Repository layout (direct children of root):
  - RMSKIN.ini (required) package manifest with an [rmskin] section;
  - RMSKIN.bmp (optional) 400x60 installer header image;
  - Skins/, Layouts/, Plugins/, @Vault/ (at least one required).

Footer layout:

	offset 0..7  : archive size before footer, int64 little-endian
	offset 8..15 : 00 52 4D 53 4B 49 4E 00 ("\x00RMSKIN\x00")

# Building

Run the whole pipeline for a repository:

	res, err := rmskin.Build(ctx, rmskin.BuildOptions{
	    Root:      "./my-skin",
	    OutputDir: "./dist",
	    Title:     "my-skin",
	    Version:   rmskin.VersionAuto,
	    DeriveVersion: func() (string, error) {
	        return rmskin.DeriveVersion(os.Getenv("GITHUB_REF"), os.Getenv("GITHUB_SHA")), nil
	    },
	    Logger: slog.Default(),
	})
	if err != nil {
	    return err
	}
	_ = res.ArchiveName // e.g. "my-skin_1.2.3.rmskin"

Exclude repository files with ordered path rules (github.com/woozymasta/pathrules):

	res, err := rmskin.Build(ctx, rmskin.BuildOptions{
	    Root: "./my-skin",
	    Exclude: []pathrules.Rule{
	        {Action: pathrules.ActionInclude, Pattern: "*.psd"},
	        {Action: pathrules.ActionInclude, Pattern: ".*"},
	    },
	})

# Stages

Each stage is usable on its own; stages hand data over by value and through
the build directory only:

	inv, err := rmskin.Discover(root, rmskin.DiscoverOptions{})
	rec, err := rmskin.Reconcile(root, buildDir, rmskin.ReconcileOptions{Title: "my-skin", Version: "1.0"})
	_, err = rmskin.NormalizeHeaderImage(root, buildDir, nil)
	out, err := rmskin.Assemble(ctx, inv, rmskin.AssembleOptions{
	    Root: root, BuildDir: buildDir, ArchiveName: rec.ArchiveName(),
	})
	footer, err := rmskin.AppendFooter(out.Path)

# Inspecting

Verify the footer and list members of a built package:

	info, err := rmskin.Inspect("my-skin_1.2.3.rmskin")
	if err != nil {
	    return err
	}
	for _, e := range info.Entries {
	    fmt.Println(e.Path)
	}

Extract writes every member below a destination folder and rejects
absolute or parent-relative member paths:

	err := rmskin.Extract(ctx, "my-skin_1.2.3.rmskin", "./unpacked", rmskin.ExtractOptions{})
*/
package rmskin
