package session

import (
	"errors"
	"fmt"
)

// Error kinds returned by the CSV operations. Match them with errors.Is.
var (
	ErrFileNotFound    = errors.New("csv file not found")
	ErrMalformedHeader = errors.New("csv header is malformed")
	ErrUnknownImages   = errors.New("csv references images not in the current set")
	ErrWrite           = errors.New("failed to write csv")
	ErrRead            = errors.New("failed to read csv")
)

// Error carries the kind of CSV failure plus the details needed to report it.
type Error struct {
	Kind error
	Path string
	// Count is the number of unmatched image names for ErrUnknownImages.
	Count int
	// Names lists the unmatched image names for ErrUnknownImages.
	Names []string
	Err   error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case errors.Is(e.Kind, ErrUnknownImages):
		msg = fmt.Sprintf("%d image(s) in the csv were not found in the current image set", e.Count)
	case e.Err != nil:
		msg = fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		msg = e.Kind.Error()
	}
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
