package composition

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTimeRange indicates an insertion whose range is empty or
	// falls outside the source track.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrTimeRangeConflict indicates an insertion that overlaps content
	// already present in the track.
	ErrTimeRangeConflict = errors.New("time range conflicts with existing content")
	// ErrMediaTypeMismatch indicates a source track inserted into a slot of
	// another media type.
	ErrMediaTypeMismatch = errors.New("media type mismatch")
)

// Segment is one source range placed on a composition track.
type Segment struct {
	Source      SourceTrack
	SourceRange TimeRange
	Target      TimeRange
}

// Track is a mutable composition track.
type Track struct {
	id        int
	mediaType MediaType
	segments  []Segment
	transform Transform
}

// ID returns the composition-local track identifier.
func (t *Track) ID() int { return t.id }

// MediaType returns the slot's media type.
func (t *Track) MediaType() MediaType { return t.mediaType }

// Transform returns the preferred transform applied at playback.
func (t *Track) Transform() Transform { return t.transform }

// SetTransform replaces the preferred transform.
func (t *Track) SetTransform(transform Transform) { t.transform = transform }

// IsEmpty reports whether nothing has been inserted.
func (t *Track) IsEmpty() bool { return len(t.segments) == 0 }

// Segments returns a copy of the track's segments in insertion order.
func (t *Track) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// TimeRange returns the extent of the track's content on the composition
// timeline, or the zero range when empty.
func (t *Track) TimeRange() TimeRange {
	if len(t.segments) == 0 {
		return TimeRange{}
	}
	start := t.segments[0].Target.Start
	end := t.segments[0].Target.End()
	for _, seg := range t.segments[1:] {
		start = min(start, seg.Target.Start)
		end = max(end, seg.Target.End())
	}
	return TimeRange{Start: start, Duration: end - start}
}

// InsertTimeRange places rng of the source track at the given composition
// time. The range must lie inside the source track and must not overlap
// existing content.
func (t *Track) InsertTimeRange(rng TimeRange, source SourceTrack, at time.Duration) error {
	if source.MediaType != t.mediaType {
		return fmt.Errorf("%w: %s track into %s slot", ErrMediaTypeMismatch, source.MediaType, t.mediaType)
	}
	if !rng.Valid() || at < 0 || !source.TimeRange.Contains(rng) {
		return fmt.Errorf("%w: %s of source %s", ErrInvalidTimeRange, rng, source.TimeRange)
	}
	target := TimeRange{Start: at, Duration: rng.Duration}
	for _, seg := range t.segments {
		if seg.Target.Overlaps(target) {
			return fmt.Errorf("%w: %s overlaps %s", ErrTimeRangeConflict, target, seg.Target)
		}
	}
	t.segments = append(t.segments, Segment{Source: source, SourceRange: rng, Target: target})
	return nil
}

// Composition is an editable timeline holding one video and one audio slot.
type Composition struct {
	video  *Track
	audio  *Track
	nextID int
}

// New returns an empty composition with fresh video and audio slots.
func New() *Composition {
	c := &Composition{nextID: 1}
	c.video = c.newTrack(MediaVideo)
	c.audio = c.newTrack(MediaAudio)
	return c
}

func (c *Composition) newTrack(mediaType MediaType) *Track {
	track := &Track{id: c.nextID, mediaType: mediaType, transform: Identity}
	c.nextID++
	return track
}

// VideoTrack returns the video slot.
func (c *Composition) VideoTrack() *Track { return c.video }

// AudioTrack returns the audio slot.
func (c *Composition) AudioTrack() *Track { return c.audio }

// Tracks returns the populated slots, video first.
func (c *Composition) Tracks() []*Track {
	tracks := make([]*Track, 0, 2)
	for _, track := range []*Track{c.video, c.audio} {
		if track != nil && !track.IsEmpty() {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// Duration returns the end of the latest content on any track.
func (c *Composition) Duration() time.Duration {
	var end time.Duration
	for _, track := range c.Tracks() {
		end = max(end, track.TimeRange().End())
	}
	return end
}
