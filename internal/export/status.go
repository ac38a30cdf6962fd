package export

// Status mirrors the lifecycle of one export session.
type Status int

const (
	StatusUnknown Status = iota
	StatusWaiting
	StatusExporting
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusExporting:
		return "exporting"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// canTransition enforces monotonic progress: terminal states are final and
// non-terminal states only move forward.
func (s Status) canTransition(to Status) bool {
	if s.Terminal() {
		return false
	}
	if to.Terminal() {
		return true
	}
	return to > s
}
