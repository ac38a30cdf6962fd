package convert

import (
	"fmt"
	"strings"

	"vidconv/internal/export"
)

// VideoFormat is a supported output container.
type VideoFormat string

const (
	FormatMP4 VideoFormat = "mp4"
)

// ParseVideoFormat resolves a format name or extension such as "mp4" or ".MP4".
func ParseVideoFormat(value string) (VideoFormat, error) {
	switch VideoFormat(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")) {
	case FormatMP4:
		return FormatMP4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

func (f VideoFormat) String() string { return string(f) }

// Extension returns the file extension without a leading dot.
func (f VideoFormat) Extension() string {
	switch f {
	case FormatMP4:
		return "mp4"
	default:
		return ""
	}
}

// MimeType returns the MIME type of files in this format.
func (f VideoFormat) MimeType() string {
	switch f {
	case FormatMP4:
		return "video/mp4"
	default:
		return ""
	}
}

// FileType returns the export container for the format.
func (f VideoFormat) FileType() export.FileType {
	switch f {
	case FormatMP4:
		return export.FileTypeMP4
	default:
		return ""
	}
}

func (f VideoFormat) valid() bool {
	return f.Extension() != ""
}
