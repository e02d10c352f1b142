package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every *ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
