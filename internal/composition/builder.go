package composition

import (
	"errors"
	"fmt"
	"log/slog"

	"vidconv/internal/logging"
)

var (
	ErrVideoTrackNotAvailable = errors.New("video track not available")
	ErrAudioTrackNotAvailable = errors.New("audio track not available")
	ErrIssueInsertingVideo    = errors.New("issue inserting video")
	ErrIssueInsertingAudio    = errors.New("issue inserting audio")
)

// Options tunes Build.
type Options struct {
	// IgnoreAudioTrack turns a missing audio track into a video-only
	// composition instead of ErrAudioTrackNotAvailable.
	IgnoreAudioTrack bool
	Logger           *slog.Logger
}

// Build constructs a composition from the asset's first video track and
// first audio track.
func Build(asset Asset, opts Options) (*Composition, error) {
	if asset == nil {
		return nil, fmt.Errorf("build composition: nil asset")
	}
	logger := logging.NewComponentLogger(opts.Logger, "composition")
	comp := New()

	sourceVideo, ok := first(asset.Tracks(MediaVideo))
	if !ok {
		return nil, ErrVideoTrackNotAvailable
	}
	if err := comp.video.InsertTimeRange(sourceVideo.TimeRange, sourceVideo, 0); err != nil {
		logger.Debug("video insertion rejected",
			logging.Error(err),
			logging.String("range", sourceVideo.TimeRange.String()),
		)
		return nil, fmt.Errorf("%w: %w", ErrIssueInsertingVideo, err)
	}
	comp.video.SetTransform(sourceVideo.Transform)

	sourceAudio, ok := first(asset.Tracks(MediaAudio))
	if !ok {
		if opts.IgnoreAudioTrack {
			logger.Info("source has no audio track; building video-only composition",
				logging.String("source", asset.Location()),
				logging.String(logging.FieldEventType, "audio_track_skipped"),
			)
			return comp, nil
		}
		return nil, ErrAudioTrackNotAvailable
	}
	if err := comp.audio.InsertTimeRange(sourceAudio.TimeRange, sourceAudio, 0); err != nil {
		logger.Debug("audio insertion rejected",
			logging.Error(err),
			logging.String("range", sourceAudio.TimeRange.String()),
		)
		return nil, fmt.Errorf("%w: %w", ErrIssueInsertingAudio, err)
	}

	logger.Debug("composition built",
		logging.String("source", asset.Location()),
		logging.Int("video_track_id", comp.video.ID()),
		logging.Int("audio_track_id", comp.audio.ID()),
		logging.Duration("duration", comp.Duration()),
		logging.Float64("rotation", comp.video.Transform().Rotation()),
	)
	return comp, nil
}

func first(tracks []SourceTrack) (SourceTrack, bool) {
	if len(tracks) == 0 {
		return SourceTrack{}, false
	}
	return tracks[0], true
}
