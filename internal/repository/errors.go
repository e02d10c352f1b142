package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")

// Failure kinds of the submission repository. Callers match them with
// errors.Is; the underlying cause stays reachable through the same chain.
var (
	ErrFetchFailed        = errors.New("fetch failed")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrUpdateStatusFailed = errors.New("update status failed")
	ErrInvalidStatus      = errors.New("invalid status")
)

// OpError tags a remote failure with its kind and the operation that hit it.
type OpError struct {
	Kind error
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func opError(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Op: op, Err: err}
}
