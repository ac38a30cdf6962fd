// Package asset opens source media by URI and exposes its tracks to the
// composition builder.
//
// Track discovery and timing come from ffprobe. For ISO base media sources
// the tkhd matrices are read directly so the video transform is copied
// exactly; other containers fall back to the display matrix rotation ffprobe
// reports.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidconv/internal/composition"
	"vidconv/internal/logging"
	"vidconv/internal/media/ffprobe"
	"vidconv/internal/media/isobmff"
)

// ErrUnsupportedScheme indicates a source URI that is not a local file.
var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Asset is an opened source container.
type Asset struct {
	location   string
	duration   time.Duration
	formatName string
	sizeBytes  int64
	bitRate    int64
	tracks     []composition.SourceTrack
}

// Location returns the local path of the asset.
func (a *Asset) Location() string { return a.location }

// Duration returns the container duration.
func (a *Asset) Duration() time.Duration { return a.duration }

// FormatName returns the container format reported by ffprobe.
func (a *Asset) FormatName() string { return a.formatName }

// SizeBytes returns the container size ffprobe reported, or 0.
func (a *Asset) SizeBytes() int64 { return a.sizeBytes }

// BitRate returns the overall bitrate in bits per second, or 0.
func (a *Asset) BitRate() int64 { return a.bitRate }

// Tracks returns the tracks of one media type in container order.
func (a *Asset) Tracks(mediaType composition.MediaType) []composition.SourceTrack {
	var out []composition.SourceTrack
	for _, track := range a.tracks {
		if track.MediaType == mediaType {
			out = append(out, track)
		}
	}
	return out
}

// AllTracks returns every video and audio track.
func (a *Asset) AllTracks() []composition.SourceTrack {
	return append([]composition.SourceTrack(nil), a.tracks...)
}

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// HeaderFunc reads ISO base media track headers.
type HeaderFunc func(path string) (isobmff.File, error)

// Loader opens assets.
type Loader struct {
	ffprobeBinary string
	probe         ProbeFunc
	headers       HeaderFunc
	logger        *slog.Logger
}

// NewLoader constructs a loader backed by the given ffprobe binary.
func NewLoader(ffprobeBinary string, logger *slog.Logger) *Loader {
	return &Loader{
		ffprobeBinary: ffprobeBinary,
		probe:         ffprobe.Inspect,
		headers:       isobmff.ReadFile,
		logger:        logging.NewComponentLogger(logger, "asset"),
	}
}

// WithProbe replaces the ffprobe runner, mainly for tests.
func (l *Loader) WithProbe(fn ProbeFunc) *Loader {
	if fn != nil {
		l.probe = fn
	}
	return l
}

// WithHeaderReader replaces the ISO base media reader, mainly for tests.
func (l *Loader) WithHeaderReader(fn HeaderFunc) *Loader {
	if fn != nil {
		l.headers = fn
	}
	return l
}

// PathFromURL resolves a file URL or a bare path into a local path.
func PathFromURL(u *url.URL) (string, error) {
	if u == nil {
		return "", errors.New("nil source url")
	}
	switch strings.ToLower(u.Scheme) {
	case "", "file":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return "", errors.New("source url has no path")
	}
	return filepath.Clean(filepath.FromSlash(path)), nil
}

// Open inspects the source and returns its tracks.
func (l *Loader) Open(ctx context.Context, u *url.URL) (*Asset, error) {
	path, err := PathFromURL(u)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	result, err := l.probe(ctx, l.ffprobeBinary, path)
	if err != nil {
		return nil, err
	}

	var headers isobmff.File
	haveHeaders := false
	if isobmff.Supported(path) {
		if file, err := l.headers(path); err != nil {
			l.logger.Debug("track headers unavailable; using ffprobe rotation",
				logging.String("path", path),
				logging.Error(err),
			)
		} else {
			headers = file
			haveHeaders = true
		}
	}

	duration := seconds(result.DurationSeconds())
	asset := &Asset{
		location:   path,
		duration:   duration,
		formatName: result.Format.FormatName,
		sizeBytes:  result.SizeBytes(),
		bitRate:    result.BitRate(),
	}
	asset.tracks = append(asset.tracks, buildTracks(path, duration, composition.MediaVideo, result.StreamsOfType(ffprobe.CodecTypeVideo), headers.TracksWithHandler(isobmff.HandlerVideo), haveHeaders)...)
	asset.tracks = append(asset.tracks, buildTracks(path, duration, composition.MediaAudio, result.StreamsOfType(ffprobe.CodecTypeAudio), headers.TracksWithHandler(isobmff.HandlerAudio), haveHeaders)...)

	l.logger.Debug("asset opened",
		logging.String("path", path),
		logging.String("format", asset.formatName),
		logging.Duration("duration", duration),
		logging.Int64("size_bytes", asset.sizeBytes),
		logging.Int64("bit_rate", asset.bitRate),
		logging.Int("video_tracks", result.VideoStreamCount()),
		logging.Int("audio_tracks", result.AudioStreamCount()),
	)
	return asset, nil
}

// OpenAsset adapts Open to the composition.Asset interface.
func (l *Loader) OpenAsset(ctx context.Context, u *url.URL) (composition.Asset, error) {
	a, err := l.Open(ctx, u)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func buildTracks(path string, containerDuration time.Duration, mediaType composition.MediaType, streams []ffprobe.Stream, headers []isobmff.TrackHeader, haveHeaders bool) []composition.SourceTrack {
	tracks := make([]composition.SourceTrack, 0, len(streams))
	matched := haveHeaders && len(headers) == len(streams)
	for i, stream := range streams {
		duration := seconds(stream.DurationSeconds())
		if duration <= 0 {
			duration = containerDuration
		}
		track := composition.SourceTrack{
			ID:          stream.Index + 1,
			StreamIndex: stream.Index,
			MediaType:   mediaType,
			Codec:       stream.CodecName,
			Location:    path,
			TimeRange: composition.TimeRange{
				Start:    seconds(stream.StartSeconds()),
				Duration: duration,
			},
			Transform: composition.Identity,
		}
		if mediaType == composition.MediaVideo {
			track.Transform = composition.RotationTransform(stream.Rotation())
		}
		if matched {
			track.ID = int(headers[i].TrackID)
			if mediaType == composition.MediaVideo {
				track.Transform = composition.TransformFromMatrix(headers[i].Matrix)
			}
		}
		tracks = append(tracks, track)
	}
	return tracks
}

func seconds(value float64) time.Duration {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return time.Duration(math.Round(value * float64(time.Second)))
}
