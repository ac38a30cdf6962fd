package isobmff

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/abema/go-mp4"
)

type testTrack struct {
	id      uint32
	handler string
	matrix  [9]int32
}

func writeBox(t *testing.T, w *mp4.Writer, box mp4.IImmutableBox, children func()) {
	t.Helper()
	if _, err := w.StartBox(&mp4.BoxInfo{Type: box.GetType()}); err != nil {
		t.Fatalf("start box %s: %v", box.GetType(), err)
	}
	if _, err := mp4.Marshal(w, box, mp4.Context{}); err != nil {
		t.Fatalf("marshal box %s: %v", box.GetType(), err)
	}
	if children != nil {
		children()
	}
	if _, err := w.EndBox(); err != nil {
		t.Fatalf("end box %s: %v", box.GetType(), err)
	}
}

func writeTestFile(t *testing.T, path string, withMovie bool, tracks ...testTrack) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := mp4.NewWriter(f)
	writeBox(t, w, &mp4.Ftyp{
		MajorBrand:   [4]byte{'i', 's', 'o', 'm'},
		MinorVersion: 512,
		CompatibleBrands: []mp4.CompatibleBrandElem{
			{CompatibleBrand: [4]byte{'i', 's', 'o', 'm'}},
			{CompatibleBrand: [4]byte{'m', 'p', '4', '1'}},
		},
	}, nil)
	if !withMovie {
		return
	}
	writeBox(t, w, &mp4.Moov{}, func() {
		for _, track := range tracks {
			writeBox(t, w, &mp4.Trak{}, func() {
				writeBox(t, w, &mp4.Tkhd{
					FullBox: mp4.FullBox{Flags: [3]byte{0, 0, 3}},
					TrackID: track.id,
					Matrix:  track.matrix,
					Width:   1920 * 65536,
					Height:  1080 * 65536,
				}, nil)
				writeBox(t, w, &mp4.Mdia{}, func() {
					var handler [4]byte
					copy(handler[:], track.handler)
					writeBox(t, w, &mp4.Hdlr{HandlerType: handler, Name: "handler"}, nil)
				})
			})
		}
	})
}

func TestReadCollectsTrackHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.mov")
	rotated := [9]int32{0, 0x10000, 0, -0x10000, 0, 0, 0, 0, 0x40000000}
	writeTestFile(t, path, true,
		testTrack{id: 1, handler: HandlerVideo, matrix: rotated},
		testTrack{id: 2, handler: HandlerAudio, matrix: IdentityMatrix},
	)

	file, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if file.MajorBrand != "isom" {
		t.Fatalf("unexpected brand %q", file.MajorBrand)
	}
	if len(file.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(file.Tracks))
	}
	video := file.TracksWithHandler(HandlerVideo)
	if len(video) != 1 || video[0].TrackID != 1 {
		t.Fatalf("unexpected video tracks: %+v", video)
	}
	if video[0].Matrix != rotated {
		t.Fatalf("matrix not preserved: %v", video[0].Matrix)
	}
	if video[0].Width != 1920 || video[0].Height != 1080 {
		t.Fatalf("unexpected dimensions %vx%v", video[0].Width, video[0].Height)
	}
	if !file.HasHandler(HandlerAudio) {
		t.Fatal("expected audio handler")
	}
}

func TestReadWithoutMovieFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mp4")
	writeTestFile(t, path, false)

	if _, err := ReadFile(path); err != ErrNoMovie {
		t.Fatalf("expected ErrNoMovie, got %v", err)
	}
}

func TestVerifyRequiresHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video-only.mp4")
	writeTestFile(t, path, true, testTrack{id: 1, handler: HandlerVideo, matrix: IdentityMatrix})

	if err := Verify(path, HandlerVideo); err != nil {
		t.Fatalf("expected video-only file to verify, got %v", err)
	}
	if err := Verify(path, HandlerVideo, HandlerAudio); err == nil {
		t.Fatal("expected verification to fail without an audio track")
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.mp4")
	if err := os.WriteFile(path, []byte("not an mp4"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := Read(io.ReadSeeker(f)); err == nil {
		t.Fatal("expected an error for a non-ISO file")
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"/tmp/a.MOV": true,
		"/tmp/a.mp4": true,
		"/tmp/a.mkv": false,
		"/tmp/noext": false,
		"clip.m4v":   true,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
