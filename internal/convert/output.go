package convert

import (
	"net/url"

	"vidconv/internal/export"
)

// VideoOutput describes a finished conversion. Values are only built by the
// converter for completed sessions, so the destination is always set; the
// zero value reports an empty location.
type VideoOutput struct {
	destination url.URL
	mimeType    string
	format      VideoFormat
	status      export.Status
}

// DestinationLocation returns a copy of the file URL of the exported movie.
func (o VideoOutput) DestinationLocation() url.URL { return o.destination }

// Path returns the output file path.
func (o VideoOutput) Path() string { return o.destination.Path }

// MimeType returns the MIME type of the exported container.
func (o VideoOutput) MimeType() string { return o.mimeType }

// Format returns the container the source was exported to.
func (o VideoOutput) Format() VideoFormat { return o.format }

// Status returns the terminal export status, always StatusCompleted for
// outputs handed to observers.
func (o VideoOutput) Status() export.Status { return o.status }

func newVideoOutput(session *export.Session, format VideoFormat) (VideoOutput, bool) {
	if session == nil || session.Status() != export.StatusCompleted || session.Destination() == "" {
		return VideoOutput{}, false
	}
	return VideoOutput{
		destination: url.URL{Scheme: "file", Path: session.Destination()},
		mimeType:    format.MimeType(),
		format:      format,
		status:      export.StatusCompleted,
	}, true
}
