package composition

import "time"

// SourceTrack is a track of a source asset as seen by the builder.
type SourceTrack struct {
	// ID is the container track identifier.
	ID int
	// StreamIndex is the stream position the export tool maps from.
	StreamIndex int
	MediaType   MediaType
	Codec       string
	// Location is the local path of the asset owning the track.
	Location  string
	TimeRange TimeRange
	Transform Transform
}

// Asset is a readable source media container that exposes tracks by media
// type in container order.
type Asset interface {
	Location() string
	Duration() time.Duration
	Tracks(mediaType MediaType) []SourceTrack
}
