package isobmff

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abema/go-mp4"
)

// Handler types stored in hdlr boxes.
const (
	HandlerVideo = "vide"
	HandlerAudio = "soun"
)

// ErrNoMovie indicates the file has no moov box.
var ErrNoMovie = errors.New("moov box not found")

// TrackHeader captures the parts of a trak box the converter cares about.
type TrackHeader struct {
	TrackID uint32
	Handler string
	Matrix  [9]int32
	Width   float64
	Height  float64
}

// File summarizes an ISO base media file.
type File struct {
	MajorBrand string
	Tracks     []TrackHeader
}

// HasHandler reports whether any track uses the given handler type.
func (f File) HasHandler(handler string) bool {
	for _, track := range f.Tracks {
		if track.Handler == handler {
			return true
		}
	}
	return false
}

// TracksWithHandler returns tracks of one handler type in file order.
func (f File) TracksWithHandler(handler string) []TrackHeader {
	var out []TrackHeader
	for _, track := range f.Tracks {
		if track.Handler == handler {
			out = append(out, track)
		}
	}
	return out
}

var supportedExtensions = map[string]struct{}{
	".mp4": {},
	".m4v": {},
	".m4a": {},
	".mov": {},
	".3gp": {},
}

// Supported reports whether the path looks like an ISO base media file.
func Supported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReadFile opens path and reads its box structure.
func ReadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read walks the box structure and collects the ftyp brand plus every
// trak's tkhd and hdlr.
func Read(r io.ReadSeeker) (File, error) {
	var out File
	movieSeen := false
	current := -1

	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (interface{}, error) {
		switch h.BoxInfo.Type.String() {
		case "ftyp":
			box, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			ftyp := box.(*mp4.Ftyp)
			out.MajorBrand = string(ftyp.MajorBrand[:])

		case "moov":
			movieSeen = true
			return h.Expand()

		case "trak":
			out.Tracks = append(out.Tracks, TrackHeader{})
			current = len(out.Tracks) - 1
			return h.Expand()

		case "mdia":
			return h.Expand()

		case "tkhd":
			if current < 0 {
				return nil, nil
			}
			box, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			tkhd := box.(*mp4.Tkhd)
			out.Tracks[current].TrackID = tkhd.TrackID
			out.Tracks[current].Matrix = tkhd.Matrix
			out.Tracks[current].Width = float64(tkhd.Width) / 65536
			out.Tracks[current].Height = float64(tkhd.Height) / 65536

		case "hdlr":
			if current < 0 {
				return nil, nil
			}
			box, _, err := h.ReadPayload()
			if err != nil {
				return nil, err
			}
			hdlr := box.(*mp4.Hdlr)
			out.Tracks[current].Handler = string(hdlr.HandlerType[:])
		}
		return nil, nil
	})
	if err != nil {
		return File{}, fmt.Errorf("read box structure: %w", err)
	}
	if !movieSeen {
		return File{}, ErrNoMovie
	}
	return out, nil
}

// Verify checks that path is an ISO base media file containing at least one
// track for every requested handler type.
func Verify(path string, handlers ...string) error {
	file, err := ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(file.MajorBrand) == "" {
		return fmt.Errorf("%s: ftyp box not found", path)
	}
	for _, handler := range handlers {
		if !file.HasHandler(handler) {
			return fmt.Errorf("%s: no %q track", path, handler)
		}
	}
	return nil
}
