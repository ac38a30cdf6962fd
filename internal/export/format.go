package export

import "fmt"

// FileType is an output container.
type FileType string

const (
	FileTypeMP4 FileType = "mp4"
)

// Muxer returns the ffmpeg muxer name for the container.
func (f FileType) Muxer() (string, error) {
	switch f {
	case FileTypeMP4:
		return "mp4", nil
	default:
		return "", fmt.Errorf("unsupported file type %q", string(f))
	}
}

// Preset selects how samples are processed during export.
type Preset string

const (
	// PresetPassthrough repackages encoded samples without re-encoding.
	PresetPassthrough Preset = "passthrough"
)
