package usecase

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a flow failed.
type ErrorCode string

const (
	// ErrorInvalidInput: the request never left the client.
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorRejected: the backend answered with a non-2xx status.
	ErrorRejected ErrorCode = "REJECTED"
	// ErrorTransport: no usable answer (network, malformed body).
	ErrorTransport ErrorCode = "TRANSPORT_ERROR"
	// ErrorStorage: the session token could not be read or written.
	ErrorStorage ErrorCode = "STORAGE_ERROR"
)

// Transient reports whether repeating the same action may succeed.
func (c ErrorCode) Transient() bool {
	return c == ErrorTransport || c == ErrorStorage
}

// Error is returned by flows that report failure to their caller. The view
// has already been updated by the time it is returned, so callers only
// decide what to do next (exit status, retry prompt).
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err == nil:
		return fmt.Sprintf("usecase: %s [%s]", e.Reason, e.Code)
	default:
		return fmt.Sprintf("usecase: %s [%s]: %v", e.Reason, e.Code, e.Err)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// err did not come from a flow.
func CodeOf(err error) ErrorCode {
	var flowErr *Error
	if errors.As(err, &flowErr) && flowErr != nil {
		return flowErr.Code
	}
	return ""
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
