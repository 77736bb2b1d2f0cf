package models

import (
	"errors"
	"fmt"
)

// Kind sentinels. A *LookupError matches its kind with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTransport      = errors.New("transport error")
	ErrDecode         = errors.New("decode error")
)

// LookupError is the failure delivered to the observer. Kind is one of the
// sentinels above; Err is the underlying cause.
type LookupError struct {
	Kind error
	Op   string
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool { return target == e.Kind }

// InvalidRequest wraps err as an ErrInvalidRequest failure of op.
func InvalidRequest(op string, err error) error {
	return &LookupError{Kind: ErrInvalidRequest, Op: op, Err: err}
}

// TransportError wraps err as an ErrTransport failure of op.
func TransportError(op string, err error) error {
	return &LookupError{Kind: ErrTransport, Op: op, Err: err}
}

// DecodeError wraps err as an ErrDecode failure of op.
func DecodeError(op string, err error) error {
	return &LookupError{Kind: ErrDecode, Op: op, Err: err}
}

// KindLabel returns a stable label for the error's kind ("invalid_request",
// "transport", "decode") or "unknown".
func KindLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}
