package convert

import (
	"errors"
	"fmt"

	"vidconv/internal/composition"
	"vidconv/internal/export"
)

var (
	// ErrNilVideoInput indicates the input has no source location.
	ErrNilVideoInput = errors.New("video input has no source location")
	// ErrSourceUnreadable indicates the source could not be opened or probed.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrUnsupportedFormat indicates an unknown output format.
	ErrUnsupportedFormat = errors.New("unsupported video format")

	ErrVideoTrackNotAvailable = composition.ErrVideoTrackNotAvailable
	ErrAudioTrackNotAvailable = composition.ErrAudioTrackNotAvailable
	ErrIssueInsertingVideo    = composition.ErrIssueInsertingVideo
	ErrIssueInsertingAudio    = composition.ErrIssueInsertingAudio

	// ErrExport matches every *ExportError via errors.Is.
	ErrExport = errors.New("export error")
)

// ExportError reports an export that ended in a failed status. It is only
// delivered through Observer.OnFailure.
type ExportError struct {
	Status  export.Status
	Message string
	Err     error
}

func newExportError(session *export.Session) *ExportError {
	err := session.Err()
	if err == nil {
		err = fmt.Errorf("export ended with status %s", session.Status())
	}
	return &ExportError{Status: session.Status(), Message: err.Error(), Err: err}
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %s", e.Status, e.Message)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrExport }
