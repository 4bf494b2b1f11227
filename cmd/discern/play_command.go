package main

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/spf13/cobra"

	"discern/player"
)

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var track int

	cmd := &cobra.Command{
		Use:   "play <image.cue>",
		Short: "Play a track through the default audio device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer p.Close()

			st, err := player.New(p, uint8(track))
			if err != nil {
				return err
			}
			defer st.Close()

			err = speaker.Init(player.Format.SampleRate, player.Format.SampleRate.N(time.Second/10))
			if err != nil {
				return err
			}

			done := make(chan struct{})
			speaker.Play(beep.Seq(st, beep.Callback(func() {
				close(done)
			})))
			<-done
			return st.Err()
		},
	}

	cmd.Flags().IntVarP(&track, "track", "t", 1, "Track to play")
	return cmd
}
