package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"discern/cdda"
	"discern/paranoia"
	"discern/wave"
)

func newRipCommand(ctx *commandContext) *cobra.Command {
	var track int
	var outputDir string

	cmd := &cobra.Command{
		Use:   "rip <image.cue>",
		Short: "Extract verified audio tracks to WAV files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return err
			}

			p, err := ctx.openSession(args)
			if err != nil {
				return err
			}
			defer p.Close()
			log := ctx.logger()

			tracks := make([]uint8, 0, p.Drive().TrackCount())
			if track > 0 {
				tracks = append(tracks, uint8(track))
			} else {
				for _, t := range p.Drive().TOC() {
					if t.IsAudio() {
						tracks = append(tracks, t.TrackNum)
					}
				}
			}

			for _, t := range tracks {
				if err := ripOne(cmd.OutOrStdout(), log, p, t, outputDir); err != nil {
					return fmt.Errorf("rip track %d: %w", t, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&track, "track", "t", 0, "Track to rip (default all audio tracks)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory")
	return cmd
}

func ripOne(out io.Writer, log *slog.Logger, p *paranoia.Paranoia, track uint8, dir string) error {
	first, end, err := cdda.TrackRange(p.Drive(), track)
	if err != nil {
		return err
	}
	channels, _ := p.Drive().TrackChannels(track)

	tr, err := p.ReadTrack(track)
	if err != nil {
		return err
	}
	defer tr.Close()

	path := filepath.Join(dir, fmt.Sprintf("track%02d.wav", track))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bar := newProgressBar(out, int64(end-first), fmt.Sprintf("track %02d", track))
	w := wave.NewWriter(f, channels)
	for sec, err := range tr.Sectors() {
		if err != nil {
			return err
		}
		if err := w.WriteSamples(sec.Samples); err != nil {
			return err
		}
		bar.Add(1)
	}
	if err := w.Finalize(); err != nil {
		return err
	}
	bar.Finish()

	for _, span := range tr.DegradedSpans() {
		log.Warn("uncorrectable sectors written as best effort",
			"track", track, "sectors", span.String())
	}
	log.Info("track extracted", "track", track, "path", path)
	return f.Close()
}

func newProgressBar(out io.Writer, total int64, label string) *progressbar.ProgressBar {
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		return progressbar.DefaultSilent(total)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
