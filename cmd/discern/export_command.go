package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discern/paranoia"
	"discern/vfs"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "export <image.cue> <out.img>",
		Short: "Extract all audio tracks into a FAT32 disk image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer p.Close()
			log := ctx.logger()

			fsys, err := vfs.Create(args[1], label)
			if err != nil {
				return err
			}

			for _, t := range p.Drive().TOC() {
				if !t.IsAudio() {
					continue
				}
				tr, err := p.ReadTrack(t.TrackNum)
				if err != nil {
					return err
				}
				channels, _ := p.Drive().TrackChannels(t.TrackNum)
				name, err := fsys.AddTrack(channels, t.LengthSectors, paranoia.NewPCMReader(tr))
				tr.Close()
				if err != nil {
					return fmt.Errorf("export track %d: %w", t.TrackNum, err)
				}
				log.Info("track exported", "track", t.TrackNum, "file", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %v\n", fsys.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Volume label for the image")
	return cmd
}
