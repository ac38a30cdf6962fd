package convert

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// VideoInput describes the file to convert.
type VideoInput struct {
	SourceLocation *url.URL
	// MimeType is informational; the container is detected from the file itself.
	MimeType string
}

// NewVideoInput builds an input from a file URI or a filesystem path.
// Relative paths are resolved against the working directory.
func NewVideoInput(location, mimeType string) (VideoInput, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return VideoInput{}, errors.New("empty source location")
	}
	input := VideoInput{MimeType: strings.TrimSpace(mimeType)}
	if strings.Contains(location, "://") {
		u, err := url.Parse(location)
		if err != nil {
			return VideoInput{}, fmt.Errorf("parse source location: %w", err)
		}
		input.SourceLocation = u
		return input, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return VideoInput{}, fmt.Errorf("resolve source path: %w", err)
	}
	input.SourceLocation = &url.URL{Scheme: "file", Path: abs}
	return input, nil
}
