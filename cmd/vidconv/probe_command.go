package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidconv/internal/composition"
	"vidconv/internal/convert"
	"vidconv/internal/logging"
	"vidconv/internal/media/asset"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <path-or-uri>",
		Short: "Show the tracks a conversion would use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			input, err := convert.NewVideoInput(args[0], "")
			if err != nil {
				return err
			}

			source, err := ctx.newLoader(cfg, logger).Open(cmd.Context(), input.SourceLocation)
			if err != nil {
				return fmt.Errorf("probe %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source:   %s\n", source.Location())
			fmt.Fprintf(out, "Format:   %s\n", source.FormatName())
			fmt.Fprintf(out, "Duration: %s\n", formatClock(source.Duration()))
			fmt.Fprintf(out, "Size:     %s\n", logging.FormatBytes(source.SizeBytes()))
			fmt.Fprintf(out, "Bitrate:  %s\n", logging.FormatBitRate(source.BitRate()))
			fmt.Fprintf(out, "Streams:  %d video, %d audio\n",
				len(source.Tracks(composition.MediaVideo)),
				len(source.Tracks(composition.MediaAudio)),
			)
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTracks(source))
			return nil
		},
	}
}

func renderTracks(source *asset.Asset) string {
	tracks := source.AllTracks()
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(track.ID),
			strconv.Itoa(track.StreamIndex),
			displayLabel(string(track.MediaType)),
			track.Codec,
			formatClock(track.TimeRange.Start),
			formatClock(track.TimeRange.Duration),
			strconv.FormatFloat(track.Transform.Rotation(), 'f', -1, 64) + "°",
		})
	}
	return renderTable(
		[]string{"Track", "Stream", "Type", "Codec", "Start", "Duration", "Rotation"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
}

// formatClock renders d as H:MM:SS.mmm.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, d/time.Millisecond)
}
