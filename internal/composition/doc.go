// Package composition builds the in-memory timeline a conversion exports.
//
// A Composition has exactly two track slots, one video and one audio. Build
// copies the full native time range of the source asset's first video track
// and first audio track into those slots at time zero, and carries the
// source video transform across so playback orientation is preserved. Video
// is always extracted and inserted before audio is queried, so failures
// identify the phase that broke.
//
// The package touches no files; assets are supplied through the Asset
// interface.
package composition
