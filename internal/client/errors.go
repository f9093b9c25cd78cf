package client

import (
	"errors"
	"fmt"
)

// ErrUnreachable marks failures where no usable response was obtained from the ledger.
var ErrUnreachable = errors.New("ledger service unreachable")

// TransportError is a network failure or a malformed success response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, ErrUnreachable, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrUnreachable, e.Err}
}

// RejectionError is a well-formed non-2xx response from the ledger.
type RejectionError struct {
	StatusCode int
	Message    string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ledger rejected request with status %d", e.StatusCode)
	}
	return fmt.Sprintf("ledger rejected request with status %d: %s", e.StatusCode, e.Message)
}

// IsRejection reports whether err is a ledger rejection and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}
