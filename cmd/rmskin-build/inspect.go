// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package main

import (
	"fmt"
	"strconv"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/cobra"

	"github.com/woozymasta/rmskin"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <package.rmskin>",
		Short: "Verify a package footer and list its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rmskin.Inspect(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, renderPackageTable(info)); err != nil {
				return err
			}

			_, err = fmt.Fprintf(out, "Footer: archive size %d (%#X), package size %d, %d member(s)\n",
				info.Footer.Size, info.Footer.Size, info.Size, len(info.Entries))
			return err
		},
	}
}

func renderPackageTable(info *rmskin.PackageInfo) string {
	rows := make([][]string, 0, len(info.Entries))
	for _, entry := range info.Entries {
		rows = append(rows, []string{
			entry.Path,
			methodName(entry.Method),
			strconv.FormatUint(entry.UncompressedSize, 10),
			strconv.FormatUint(entry.CompressedSize, 10),
		})
	}

	return renderTable(
		[]string{"Path", "Method", "Size", "Packed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	)
}

func methodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	default:
		return strconv.FormatUint(uint64(method), 10)
	}
}
