// Package isobmff reads track headers from ISO base media files (MP4, MOV,
// M4V) with github.com/abema/go-mp4.
//
// The converter uses it for two things: recovering the exact tkhd matrix of a
// source track so the orientation transform survives the export, and
// verifying that an exported file is a well-formed MP4 carrying the expected
// track handlers.
package isobmff
