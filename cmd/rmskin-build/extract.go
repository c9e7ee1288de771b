// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rmskin

package main

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/woozymasta/rmskin"
)

func newExtractCommand() *cobra.Command {
	var (
		workers   int
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "extract <package.rmskin> <dir>",
		Short: "Verify a package footer and unpack its members",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count atomic.Int64
			err := rmskin.Extract(cmd.Context(), args[0], args[1], rmskin.ExtractOptions{
				MaxWorkers: workers,
				Overwrite:  overwrite,
				OnEntryDone: func(rmskin.MemberProgress) {
					count.Add(1)
				},
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d member(s) to %s\n", count.Load(), args[1])
			return err
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Parallel member writers (default: GOMAXPROCS)")
	cmd.Flags().BoolVarP(&overwrite, "force", "f", false, "Overwrite existing files")

	return cmd
}
