package provider

import (
	"errors"
	"fmt"
)

// ErrUnknownUsername means the identity service has no account for the name.
var ErrUnknownUsername = errors.New("unknown username")

// StatusError is returned when the service answers with an unexpected HTTP
// status.
type StatusError struct {
	Stage Stage
	Code  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s lookup: unexpected HTTP status %d", e.Stage, e.Code)
}

// MalformedError is returned when a response body cannot be understood.
type MalformedError struct {
	Stage Stage
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s lookup: malformed response: %v", e.Stage, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, or 0 if err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsMalformed reports whether err came from an unparseable response.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}
