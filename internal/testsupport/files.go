package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// clipHeaderSize covers the ftyp box plus the header of the trailing free box.
const clipHeaderSize = 28

// WriteClip writes a placeholder QuickTime source of the given size: an ftyp
// box followed by a free box padding the rest. It has no moov box, so track
// headers are unreadable and callers fall back to ffprobe data. Sizes below
// the header size are raised to it.
func WriteClip(t testing.TB, path string, size int64) {
	t.Helper()

	if size < clipHeaderSize {
		size = clipHeaderSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	data := make([]byte, size)
	binary.BigEndian.PutUint32(data[0:4], 20)
	copy(data[4:8], "ftyp")
	copy(data[8:12], "qt  ")
	copy(data[16:20], "qt  ")
	binary.BigEndian.PutUint32(data[20:24], uint32(size-20))
	copy(data[24:28], "free")

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write clip %s: %v", path, err)
	}
}
