package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"vidconv/internal/config"
	"vidconv/internal/convert"
	"vidconv/internal/export"
	"vidconv/internal/logging"
	"vidconv/internal/preflight"
	"vidconv/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert files dropped into the inbox directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if dir := strings.TrimSpace(dirFlag); dir != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve inbox directory: %w", err)
				}
				cfg.Paths.InboxDir = expanded
			}
			if cfg.Paths.InboxDir == "" {
				return errors.New("no inbox directory; set inbox_dir under [paths] or pass --dir")
			}
			if err := cfg.ValidateInbox(); err != nil {
				return err
			}

			if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
				for _, result := range failed {
					fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(result.Name, statusError, result.Detail, shouldColorize(cmd.ErrOrStderr())))
				}
				return fmt.Errorf("preflight failed: %d check(s) did not pass; run `vidconv doctor` for details", len(failed))
			}

			format, err := convert.ParseVideoFormat(cfg.Conversion.Format)
			if err != nil {
				return err
			}
			services, err := ctx.newConverter(ctx.conversionOptions())
			if err != nil {
				return err
			}
			defer services.Close()

			out := cmd.OutOrStdout()
			observer := &convert.ObserverFuncs{
				Success: func(output convert.VideoOutput) {
					fmt.Fprintln(out, output.Path())
				},
				Failure: func(err error, status export.Status) {
					logging.ErrorWithContext(logger, "inbox conversion did not complete", "conversion_failed",
						logging.String("status", status.String()),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check that the source is a readable video file"),
					)
				},
			}
			convert.Observe(services.converter, observer)

			watcher, err := watch.New(watch.Options{
				Dir:        cfg.Paths.InboxDir,
				Extensions: cfg.Watch.Extensions,
				Settle:     cfg.SettleDelay(),
				LockPath:   filepath.Join(cfg.Paths.LogDir, "vidconv-watch.lock"),
			}, inboxHandler(services.converter, format), logger)
			if err != nil {
				return err
			}

			err = watcher.Run(cmd.Context())
			runtime.KeepAlive(observer)
			if errors.Is(err, watch.ErrAlreadyRunning) {
				return fmt.Errorf("another vidconv watch is already running (lock under %s)", cfg.Paths.LogDir)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Inbox directory (default from config)")
	return cmd
}

// inboxHandler converts one settled file and returns once its export has
// finished and the outcome has been recorded and reported.
func inboxHandler(converter *convert.Converter, format convert.VideoFormat) watch.Handler {
	return func(ctx context.Context, path string) error {
		input, err := convert.NewVideoInput(path, mimeTypeForPath(path))
		if err != nil {
			return err
		}
		session, err := converter.Convert(ctx, input, format)
		if err != nil {
			return err
		}
		<-session.Done()
		return nil
	}
}
