package catalog

import (
	"errors"
	"fmt"
)

// Error kinds shared by every component of the catalog. Callers test for
// them with errors.Is.
var (
	// ErrNotFound means the lookup succeeded and nothing matched.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest means a required parameter was missing or malformed.
	ErrBadRequest = errors.New("bad request")
	// ErrBackend means the store or filesystem failed.
	ErrBackend = errors.New("backend failure")
)

// Error records the failing operation together with its kind and cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound builds an ErrNotFound error for op.
func NotFound(op string) error {
	return &Error{Op: op, Kind: ErrNotFound}
}

// BadRequest builds an ErrBadRequest error for op.
func BadRequest(op string, err error) error {
	return &Error{Op: op, Kind: ErrBadRequest, Err: err}
}

// Backend wraps a store or filesystem failure. Errors that already carry
// a kind are returned unchanged.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBackend) || errors.Is(err, ErrBadRequest) {
		return err
	}
	return &Error{Op: op, Kind: ErrBackend, Err: err}
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
