package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidconv/internal/composition"
	"vidconv/internal/logging"
	"vidconv/internal/media/isobmff"
)

var (
	// ErrDestinationExists indicates the output file is already present.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrExportTimeout indicates the export exceeded the configured timeout.
	ErrExportTimeout = errors.New("export timed out")
	// ErrUnsupportedPreset indicates a preset other than passthrough.
	ErrUnsupportedPreset = errors.New("unsupported export preset")
	// ErrTransformChanged indicates a video transform that differs from its
	// source, which stream copy cannot express.
	ErrTransformChanged = errors.New("video transform differs from source")
)

// CommandRunner executes an external command.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Verifier checks an exported file carries the given track handlers.
type Verifier func(path string, handlers ...string) error

// Exporter runs passthrough exports through ffmpeg.
type Exporter struct {
	binary  string
	run     CommandRunner
	verify  Verifier
	timeout time.Duration
	logger  *slog.Logger
}

// NewExporter constructs an exporter using the given ffmpeg binary.
func NewExporter(binary string, logger *slog.Logger) *Exporter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Exporter{
		binary: binary,
		run:    defaultCommandRunner,
		verify: isobmff.Verify,
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Exporter) WithCommandRunner(r CommandRunner) *Exporter {
	if e != nil && r != nil {
		e.run = r
	}
	return e
}

// WithVerifier replaces the output verifier.
func (e *Exporter) WithVerifier(v Verifier) *Exporter {
	if e != nil && v != nil {
		e.verify = v
	}
	return e
}

// WithTimeout bounds each export. Zero disables the bound.
func (e *Exporter) WithTimeout(timeout time.Duration) *Exporter {
	if e != nil && timeout >= 0 {
		e.timeout = timeout
	}
	return e
}

// Start configures a session and launches the export in the background. It
// returns once the session is waiting; completion is invoked exactly once
// after the session reaches a terminal status.
func (e *Exporter) Start(ctx context.Context, req Request, completion func(*Session)) (*Session, error) {
	if e == nil {
		return nil, errors.New("exporter not initialized")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	session := newSession(uuid.NewString(), req)
	session.transition(StatusWaiting, nil)

	logger := logging.WithContext(ctx, e.logger).With(
		logging.String("session_id", session.ID()),
		logging.String("destination", req.Destination),
	)
	logger.Debug("export session configured",
		logging.String("file_type", string(req.FileType)),
		logging.String("preset", string(req.Preset)),
		logging.Duration("duration", req.TimeRange.Duration),
	)

	go func() {
		defer close(session.done)
		e.runSession(ctx, session, req, logger)
		if completion != nil {
			completion(session)
		}
	}()
	return session, nil
}

func validateRequest(req Request) error {
	if req.Composition == nil {
		return errors.New("export request: nil composition")
	}
	if len(req.Composition.Tracks()) == 0 {
		return errors.New("export request: composition has no tracks")
	}
	if req.Preset != PresetPassthrough {
		return fmt.Errorf("%w: %q", ErrUnsupportedPreset, string(req.Preset))
	}
	if _, err := req.FileType.Muxer(); err != nil {
		return fmt.Errorf("export request: %w", err)
	}
	if strings.TrimSpace(req.Destination) == "" {
		return errors.New("export request: empty destination")
	}
	if !req.TimeRange.Valid() {
		return fmt.Errorf("export request: invalid time range %s", req.TimeRange)
	}
	return nil
}

func (e *Exporter) runSession(parent context.Context, session *Session, req Request, logger *slog.Logger) {
	ctx := parent
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, e.timeout)
		defer cancel()
	}

	session.transition(StatusExporting, nil)
	err := e.export(ctx, session, req, logger)

	switch {
	case err == nil:
		session.transition(StatusCompleted, nil)
		logger.Info("export completed",
			logging.String(logging.FieldEventType, "export_complete"),
			logging.Duration("elapsed", session.Elapsed()),
		)
	case parent.Err() != nil:
		session.transition(StatusCancelled, parent.Err())
		logging.WarnWithContext(logger, "export cancelled", "export_cancelled",
			logging.Error(parent.Err()),
			logging.String(logging.FieldImpact, "no output file was produced"),
		)
	case ctx.Err() != nil:
		err = fmt.Errorf("%w after %s: %w", ErrExportTimeout, e.timeout, err)
		session.transition(StatusFailed, err)
		logging.ErrorWithContext(logger, "export failed", "export_failed", logging.Error(err))
	default:
		session.transition(StatusFailed, err)
		logging.ErrorWithContext(logger, "export failed", "export_failed", logging.Error(err))
	}
}

func (e *Exporter) export(ctx context.Context, session *Session, req Request, logger *slog.Logger) error {
	dir := filepath.Dir(req.Destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if _, err := os.Stat(req.Destination); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, req.Destination)
	}

	tmpPath := filepath.Join(dir, ".export-"+session.ID()+"-"+filepath.Base(req.Destination))
	defer func() { _ = os.Remove(tmpPath) }()

	args, err := buildArgs(req, tmpPath)
	if err != nil {
		return err
	}
	logger.Debug("executing ffmpeg", logging.String("args", strings.Join(args, " ")))

	if err := e.run(ctx, e.binary, args...); err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return fmt.Errorf("ffmpeg did not produce output file: %w", err)
	}
	if err := e.verify(tmpPath, handlersFor(req.Composition)...); err != nil {
		return fmt.Errorf("verify output: %w", err)
	}
	return finalize(tmpPath, req.Destination)
}

// finalize moves the temporary file into place without clobbering an
// existing destination.
func finalize(tmpPath, destination string) error {
	err := os.Link(tmpPath, destination)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrDestinationExists, destination)
	}
	// Filesystems without hard links.
	if _, statErr := os.Stat(destination); statErr == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, destination)
	}
	if err := os.Rename(tmpPath, destination); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

func handlersFor(comp *composition.Composition) []string {
	var handlers []string
	for _, track := range comp.Tracks() {
		switch track.MediaType() {
		case composition.MediaVideo:
			handlers = append(handlers, isobmff.HandlerVideo)
		case composition.MediaAudio:
			handlers = append(handlers, isobmff.HandlerAudio)
		}
	}
	return handlers
}

// buildArgs translates the composition into ffmpeg arguments. Each distinct
// source becomes one input; each composition track maps one source stream.
// Stream copy carries the source display matrix into the output unchanged,
// so a video track must keep its source transform.
func buildArgs(req Request, outputPath string) ([]string, error) {
	muxer, err := req.FileType.Muxer()
	if err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin", "-n"}

	inputs := map[string]int{}
	var order []string
	var maps []string

	for _, track := range req.Composition.Tracks() {
		segments := track.Segments()
		if len(segments) != 1 {
			return nil, fmt.Errorf("track %d: passthrough export supports exactly one segment, got %d", track.ID(), len(segments))
		}
		src := segments[0].Source
		idx, ok := inputs[src.Location]
		if !ok {
			idx = len(order)
			inputs[src.Location] = idx
			order = append(order, src.Location)
		}
		if track.MediaType() == composition.MediaVideo && track.Transform() != src.Transform {
			return nil, fmt.Errorf("%w: track %d", ErrTransformChanged, track.ID())
		}
		maps = append(maps, fmt.Sprintf("%d:%d", idx, src.StreamIndex))
	}

	for _, location := range order {
		args = append(args, "-i", location)
	}
	for _, m := range maps {
		args = append(args, "-map", m)
	}
	args = append(args,
		"-ss", formatSeconds(req.TimeRange.Start),
		"-t", formatSeconds(req.TimeRange.Duration),
		"-c", "copy",
		"-map_metadata", "0",
		"-movflags", "+faststart",
		"-f", muxer,
		outputPath,
	)
	return args, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
