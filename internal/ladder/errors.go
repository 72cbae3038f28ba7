package ladder

import (
	"errors"
	"fmt"
)

// Failure kinds. Every rejection returned by the service unwraps to one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("operation not allowed for this team")
	ErrNotFound         = errors.New("requested resource not found")
	ErrInvalidState     = errors.New("invalid state for operation")
	ErrDeadlinePassed   = errors.New("deadline has passed")
	ErrConcurrentUpdate = errors.New("concurrent update detected")
)

// Error carries a human readable reason next to its kind.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Reason returns the user facing message of err.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return err.Error()
}
