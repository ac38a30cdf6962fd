package export

import (
	"sync"
	"time"

	"vidconv/internal/composition"
)

// Request configures one export.
type Request struct {
	Composition *composition.Composition
	// TimeRange is the span of the composition to export.
	TimeRange   composition.TimeRange
	FileType    FileType
	Destination string
	Preset      Preset
}

// Session is one in-flight or finished export.
type Session struct {
	id          string
	destination string
	fileType    FileType
	timeRange   composition.TimeRange
	preset      Preset
	done        chan struct{}

	mu         sync.Mutex
	status     Status
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

func newSession(id string, req Request) *Session {
	return &Session{
		id:          id,
		destination: req.Destination,
		fileType:    req.FileType,
		timeRange:   req.TimeRange,
		preset:      req.Preset,
		done:        make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Destination returns the requested output path.
func (s *Session) Destination() string { return s.destination }

// FileType returns the requested container.
func (s *Session) FileType() FileType { return s.fileType }

// TimeRange returns the exported range.
func (s *Session) TimeRange() composition.TimeRange { return s.timeRange }

// Preset returns the processing preset.
func (s *Session) Preset() Preset { return s.preset }

// Done is closed once the session is terminal and its completion callback
// has returned.
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the failure cause once the session has failed or been cancelled.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Elapsed returns how long the export ran, or zero before it finished.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startedAt.IsZero() || s.finishedAt.IsZero() {
		return 0
	}
	return s.finishedAt.Sub(s.startedAt)
}

// transition moves the session forward, returning false when the move
// would go backwards or leave a terminal state.
func (s *Session) transition(to Status, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.canTransition(to) {
		return false
	}
	s.status = to
	now := time.Now()
	switch {
	case to == StatusExporting:
		s.startedAt = now
	case to.Terminal():
		s.finishedAt = now
		s.err = err
	}
	return true
}
