// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ManuGH/playout/internal/api"
	"github.com/ManuGH/playout/internal/format"
	"github.com/spf13/cobra"
)

type catalog struct {
	Modes   []api.ModeInfo   `json:"modes"`
	Formats []api.FormatInfo `json:"formats"`
}

func newFormatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the display modes and pixel formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var c catalog
			for _, m := range format.Modes() {
				c.Modes = append(c.Modes, api.DescribeMode(m))
			}
			for _, f := range format.PixelFormats() {
				c.Formats = append(c.Formats, api.DescribeFormat(f))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tNAME\tSIZE\tFRAME\tSCAN")
			for _, m := range c.Modes {
				scan := "progressive"
				if m.Interlaced {
					scan = "interlaced (" + m.FieldDominance + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n", m.Tag, m.Name, m.Width, m.Height, m.FrameDuration, scan)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "FOURCC\tNAME\tDEPTH\tSAMPLING\tCOLORIMETRY\tALIASES")
			for _, f := range c.Formats {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", f.FourCC, f.Name, f.Depth, f.Sampling, f.Colorimetry, strings.Join(f.Aliases, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
