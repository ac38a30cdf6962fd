package logging

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const consoleTimestampLayout = "2006-01-02 15:04:05.000"

// FormatBytes renders a byte count in IEC units, e.g. "24 MiB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatBitRate renders bits per second with an SI prefix, e.g. "20.1 Mbit/s".
func FormatBitRate(bps int64) string {
	if bps <= 0 {
		return "0 bit/s"
	}
	return humanize.SIWithDigits(float64(bps), 1, "bit/s")
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(consoleTimestampLayout)
}

// attrString returns the bare text of a value, used for header fields.
func attrString(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return formatField("", v)
	}
}

// formatField renders one console field. Sizes, bitrates and media paths
// are keyed by name so conversion logs stay readable.
func formatField(key string, v slog.Value) string {
	v = v.Resolve()
	if n, ok := integer(v); ok {
		switch {
		case strings.HasSuffix(key, "_bytes"):
			return FormatBytes(n)
		case key == "bit_rate" || strings.HasSuffix(key, "_bps"):
			return FormatBitRate(n)
		}
	}

	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	}

	s := v.String()
	if v.Kind() == slog.KindAny {
		s = attrString(v)
	}
	if isPathKey(key) && !strings.ContainsAny(s, "\n\r\"") {
		return s
	}
	return quoteIfNeeded(s)
}

func integer(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		return int64(v.Uint64()), true
	}
	return 0, false
}

func isPathKey(key string) bool {
	switch key {
	case FieldSource, "destination", "path", "dir", "inbox":
		return true
	}
	return false
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
