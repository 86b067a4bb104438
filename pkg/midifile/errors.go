package midifile

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSignature is returned when the data does not start with an MThd chunk
	ErrBadSignature = errors.New("missing MThd signature")
	// ErrTruncated is returned when a chunk extends past the end of the data
	ErrTruncated = errors.New("truncated MIDI data")
	// ErrUnsupportedFormat is returned for SMF formats above 2 and SMPTE timing
	ErrUnsupportedFormat = errors.New("unsupported MIDI format")
	// ErrMalformed is returned when the track data cannot be parsed
	ErrMalformed = errors.New("malformed MIDI data")
)

// DecodeError reports why a file could not be decoded. No partial result is
// ever returned alongside it.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("decode MIDI: %v", e.Err)
	}
	return fmt.Sprintf("decode MIDI: %s: %v", e.Reason, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(err error, format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Err: err}
}
