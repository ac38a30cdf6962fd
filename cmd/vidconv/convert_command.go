package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidconv/internal/convert"
	"vidconv/internal/export"
)

// cancelGrace bounds how long a cancelled convert waits for the export to clean up.
const cancelGrace = 2 * time.Second

type convertResult struct {
	output convert.VideoOutput
	err    error
	status export.Status
}

// convertObserver forwards the single conversion outcome to a channel.
type convertObserver struct {
	results chan convertResult
}

func (o *convertObserver) OnSuccess(output convert.VideoOutput) {
	o.results <- convertResult{output: output, status: output.Status()}
}

func (o *convertObserver) OnFailure(err error, status export.Status) {
	o.results <- convertResult{err: err, status: status}
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var mimeFlag string
	var timestampName bool
	var ignoreAudio bool

	cmd := &cobra.Command{
		Use:   "convert <path-or-uri>",
		Short: "Convert a video file into the configured container",
		Long: "Convert recombines the first video track and, when present, the first audio\n" +
			"track of the source into a new file under the output directory. Streams are\n" +
			"copied without re-encoding. The command waits for the export to finish and\n" +
			"prints the output path.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(formatFlag) == "" {
				formatFlag = cfg.Conversion.Format
			}
			format, err := convert.ParseVideoFormat(formatFlag)
			if err != nil {
				return err
			}

			mime := strings.TrimSpace(mimeFlag)
			if mime == "" {
				mime = mimeTypeForPath(args[0])
			}
			input, err := convert.NewVideoInput(args[0], mime)
			if err != nil {
				return err
			}

			opts := ctx.conversionOptions()
			if timestampName {
				opts.AutoGenerateIdentifier = false
			}
			if ignoreAudio {
				opts.IgnoreAudioTrack = true
			}

			services, err := ctx.newConverter(opts)
			if err != nil {
				return err
			}
			defer services.Close()

			observer := &convertObserver{results: make(chan convertResult, 1)}
			convert.Observe(services.converter, observer)

			runCtx := cmd.Context()
			session, err := services.converter.Convert(runCtx, input, format)
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}

			result, err := awaitConversion(runCtx, observer, session)
			runtime.KeepAlive(observer)
			if err != nil {
				return err
			}
			if result.err != nil {
				return result.err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.output.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format (default from config)")
	cmd.Flags().StringVar(&mimeFlag, "mime", "", "MIME type of the source (guessed from the extension)")
	cmd.Flags().BoolVar(&timestampName, "timestamp-name", false, "Name the output after the current time instead of a UUID")
	cmd.Flags().BoolVar(&ignoreAudio, "ignore-audio", false, "Convert sources without an audio track as video only")
	return cmd
}

func awaitConversion(ctx context.Context, observer *convertObserver, session *export.Session) (convertResult, error) {
	select {
	case result := <-observer.results:
		return result, nil
	case <-ctx.Done():
	}

	select {
	case <-session.Done():
	case <-time.After(cancelGrace):
	}
	if err := session.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return convertResult{}, err
	}
	return convertResult{}, ctx.Err()
}

var sourceMimeTypes = map[string]string{
	".mov": "video/quicktime",
	".qt":  "video/quicktime",
	".mp4": "video/mp4",
	".m4v": "video/x-m4v",
	".3gp": "video/3gpp",
	".mkv": "video/x-matroska",
}

func mimeTypeForPath(location string) string {
	return sourceMimeTypes[strings.ToLower(filepath.Ext(location))]
}
