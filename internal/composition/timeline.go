package composition

import (
	"fmt"
	"math"
	"time"
)

// MediaType distinguishes track kinds.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// TimeRange is a start offset and a duration on a timeline.
type TimeRange struct {
	Start    time.Duration
	Duration time.Duration
}

// End returns the exclusive end of the range.
func (r TimeRange) End() time.Duration {
	return r.Start + r.Duration
}

// Valid reports whether the range has a non-negative start and a positive duration.
func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.Duration > 0
}

// Overlaps reports whether two half-open ranges share any instant.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End() && other.Start < r.End()
}

// Contains reports whether other lies entirely within r.
func (r TimeRange) Contains(other TimeRange) bool {
	return other.Start >= r.Start && other.End() <= r.End()
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End())
}

// Transform is a 2D affine transform in the tkhd layout
//
//	| A  B  0 |
//	| C  D  0 |
//	| Tx Ty 1 |
type Transform struct {
	A, B, C, D float64
	Tx, Ty     float64
}

// Identity is the transform that leaves frames untouched.
var Identity = Transform{A: 1, D: 1}

// RotationTransform returns a transform rotating frames by degrees
// counter-clockwise, matching the display matrix convention ffmpeg reports.
func RotationTransform(degrees float64) Transform {
	if degrees == 0 {
		return Identity
	}
	rad := -degrees * math.Pi / 180
	cos := roundUnit(math.Cos(rad))
	sin := roundUnit(math.Sin(rad))
	return Transform{A: cos, B: sin, C: -sin, D: cos}
}

// TransformFromMatrix converts a tkhd matrix (16.16 fixed point for the
// linear and translation parts) into a Transform.
func TransformFromMatrix(m [9]int32) Transform {
	return Transform{
		A:  float64(m[0]) / 65536,
		B:  float64(m[1]) / 65536,
		C:  float64(m[3]) / 65536,
		D:  float64(m[4]) / 65536,
		Tx: float64(m[6]) / 65536,
		Ty: float64(m[7]) / 65536,
	}
}

// IsIdentity reports whether the transform is the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity || t == (Transform{})
}

// Rotation returns the counter-clockwise rotation in degrees.
func (t Transform) Rotation() float64 {
	scale0 := math.Hypot(t.A, t.C)
	scale1 := math.Hypot(t.B, t.D)
	if scale0 == 0 || scale1 == 0 {
		return 0
	}
	rotation := math.Atan2(t.B/scale1, t.A/scale0) * 180 / math.Pi
	if rotation == 0 {
		return 0
	}
	return -rotation
}

func roundUnit(v float64) float64 {
	rounded := math.Round(v*1e9) / 1e9
	if rounded == 0 {
		return 0
	}
	return rounded
}
