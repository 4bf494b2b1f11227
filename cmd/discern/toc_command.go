package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"discern/cdda"
	"discern/imagedrive"
)

func newTOCCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toc <image.cue>",
		Short: "Print the table of contents of a disc image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drive, err := imagedrive.Open(args[0])
			if err != nil {
				return err
			}
			defer drive.Close()

			rows := make([][]string, 0, drive.TrackCount())
			for _, t := range drive.TOC() {
				kind := "audio"
				if !t.IsAudio() {
					kind = "data"
				}
				rows = append(rows, []string{
					strconv.Itoa(int(t.TrackNum)),
					strconv.Itoa(int(t.StartSector)),
					strconv.Itoa(int(t.LengthSectors)),
					formatDuration(t.LengthSectors),
					kind,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Track", "Start", "Sectors", "Length", "Type"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func formatDuration(sectors int32) string {
	d := time.Duration(sectors) * time.Second / cdda.SectorsPerSecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
