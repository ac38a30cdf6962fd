// Package export drives the asynchronous passthrough export of a
// composition into a container file.
//
// Exporter.Start validates and configures a Session, returns it immediately,
// and runs ffmpeg with stream copy on a background goroutine. The session
// status only moves forward through Unknown, Waiting, Exporting and one of
// the terminal states Completed, Failed or Cancelled. The completion
// callback fires exactly once, after the terminal status is recorded.
//
// Output is written to a temporary file beside the destination, verified as
// a well-formed ISO base media file, then linked into place without
// replacing an existing file.
package export
