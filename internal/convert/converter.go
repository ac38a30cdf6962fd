package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"vidconv/internal/composition"
	"vidconv/internal/export"
	"vidconv/internal/history"
	"vidconv/internal/logging"
)

// Opener resolves a source location into a composition asset.
type Opener interface {
	OpenAsset(ctx context.Context, location *url.URL) (composition.Asset, error)
}

// Starter launches an export session.
type Starter interface {
	Start(ctx context.Context, req export.Request, completion func(*export.Session)) (*export.Session, error)
}

// Recorder persists conversion outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) error
}

// Options configures a Converter.
type Options struct {
	// OutputDir receives converted files.
	OutputDir string
	// AutoGenerateIdentifier names outputs with a random UUID; otherwise the
	// current timestamp is used.
	AutoGenerateIdentifier bool
	// IgnoreAudioTrack allows sources without audio to convert video-only.
	IgnoreAudioTrack bool
}

// Converter runs conversions. It is safe for concurrent use.
type Converter struct {
	opener   Opener
	starter  Starter
	opts     Options
	recorder Recorder
	now      func() time.Time
	logger   *slog.Logger
	observer atomic.Pointer[observerRef]
}

// New constructs a converter.
func New(opener Opener, starter Starter, opts Options, logger *slog.Logger) *Converter {
	return &Converter{
		opener:  opener,
		starter: starter,
		opts:    opts,
		now:     time.Now,
		logger:  logging.NewComponentLogger(logger, "convert"),
	}
}

// WithRecorder records every started conversion and its outcome.
func (c *Converter) WithRecorder(r Recorder) *Converter {
	if c != nil {
		c.recorder = r
	}
	return c
}

// WithClock replaces the clock used for timestamp file names.
func (c *Converter) WithClock(now func() time.Time) *Converter {
	if c != nil && now != nil {
		c.now = now
	}
	return c
}

// Convert validates the input, builds the composition, and starts the export.
// It returns once the export is running; the outcome is delivered to the
// registered Observer.
func (c *Converter) Convert(ctx context.Context, input VideoInput, format VideoFormat) (*export.Session, error) {
	if c == nil || c.opener == nil || c.starter == nil {
		return nil, errors.New("converter not initialized")
	}
	if input.SourceLocation == nil {
		return nil, ErrNilVideoInput
	}
	if !format.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}

	conversionID := uuid.NewString()
	ctx = logging.WithConversionID(ctx, conversionID)
	ctx = logging.WithSource(ctx, input.SourceLocation.String())
	logger := logging.WithContext(ctx, c.logger)

	asset, err := c.opener.OpenAsset(ctx, input.SourceLocation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	comp, err := composition.Build(asset, composition.Options{
		IgnoreAudioTrack: c.opts.IgnoreAudioTrack,
		Logger:           logger,
	})
	if err != nil {
		logger.Info("composition rejected",
			logging.String(logging.FieldEventType, "composition_rejected"),
			logging.Error(err),
		)
		return nil, err
	}

	req := export.Request{
		Composition: comp,
		TimeRange:   composition.TimeRange{Start: 0, Duration: asset.Duration()},
		FileType:    format.FileType(),
		Destination: c.destinationFor(format),
		Preset:      export.PresetPassthrough,
	}

	entry := history.Entry{
		ID:          conversionID,
		Source:      input.SourceLocation.String(),
		Destination: req.Destination,
		Format:      format.String(),
		Status:      export.StatusWaiting.String(),
	}
	c.record(ctx, logger, entry)

	session, err := c.starter.Start(ctx, req, func(session *export.Session) {
		c.complete(ctx, logger, entry, session, format)
	})
	if err != nil {
		entry.Status = export.StatusFailed.String()
		entry.Error = err.Error()
		c.record(ctx, logger, entry)
		return nil, fmt.Errorf("start export: %w", err)
	}

	logger.Info("conversion started",
		logging.String(logging.FieldEventType, "conversion_started"),
		logging.String("destination", req.Destination),
		logging.Int("tracks", len(comp.Tracks())),
		logging.Duration("duration", req.TimeRange.Duration),
	)
	return session, nil
}

// complete runs once per session after it reaches a terminal status.
func (c *Converter) complete(ctx context.Context, logger *slog.Logger, entry history.Entry, session *export.Session, format VideoFormat) {
	status := session.Status()
	entry.Status = status.String()
	if err := session.Err(); err != nil {
		entry.Error = err.Error()
	}
	c.record(context.WithoutCancel(ctx), logger, entry)

	observer := c.currentObserver()
	switch status {
	case export.StatusCompleted:
		output, ok := newVideoOutput(session, format)
		if !ok {
			return
		}
		logger.Info("conversion completed",
			logging.String(logging.FieldEventType, "conversion_completed"),
			logging.String("destination", output.Path()),
			logging.Duration("elapsed", session.Elapsed()),
		)
		if observer != nil {
			observer.OnSuccess(output)
		}
	case export.StatusFailed:
		exportErr := newExportError(session)
		if observer != nil {
			observer.OnFailure(exportErr, status)
		}
	default:
		logger.Info("conversion ended without result",
			logging.String(logging.FieldEventType, "conversion_"+status.String()),
			logging.String("status", status.String()),
		)
		return
	}
	if observer == nil {
		logger.Debug("no observer registered; outcome dropped", logging.String("status", status.String()))
	}
}

func (c *Converter) record(ctx context.Context, logger *slog.Logger, entry history.Entry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions"),
			logging.String(logging.FieldImpact, "conversion is not listed in history"),
		)
	}
}
