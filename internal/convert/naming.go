package convert

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// destinationFor returns <output dir>/<stem>.<ext>. Timestamp stems are the
// Unix time with nanosecond fraction, so two conversions started in the same
// instant share a destination and the second export fails instead of
// overwriting the first.
func (c *Converter) destinationFor(format VideoFormat) string {
	var stem string
	if c.opts.AutoGenerateIdentifier {
		stem = uuid.NewString()
	} else {
		stem = timestampStem(c.now())
	}
	return filepath.Join(c.opts.OutputDir, stem+"."+format.Extension())
}

func timestampStem(t time.Time) string {
	return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
}
