package ai

import (
	"errors"
	"fmt"
)

var (
	ErrAuthMissing     = errors.New("completion credential missing")
	ErrTransport       = errors.New("completion service unreachable")
	ErrServiceRejected = errors.New("completion service rejected request")
)

// Error carries the failure kind plus whatever the transport reported.
// errors.Is(err, ErrTransport) and friends match on Kind.
type Error struct {
	Kind       error
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%v: status %d: %v", e.Kind, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%v: status %d", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func transportError(err error) error {
	return &Error{Kind: ErrTransport, Err: err}
}

func rejectedError(status int, err error) error {
	return &Error{Kind: ErrServiceRejected, StatusCode: status, Err: err}
}
