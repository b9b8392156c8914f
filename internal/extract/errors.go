package extract

import (
	"errors"
	"fmt"
)

// Error kinds returned by Extract. Match them with errors.Is.
var (
	ErrStreamOpen            = errors.New("unable to open video stream")
	ErrFrameCountUnavailable = errors.New("video frame count unavailable")
	ErrExtraction            = errors.New("frame extraction failed")
	ErrCanceled              = errors.New("frame extraction canceled")
)

// Error describes a failed extraction. Frames written before the failure
// remain on disk; Written counts them.
type Error struct {
	Kind    error
	Video   string
	Written int
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Video, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Video, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
