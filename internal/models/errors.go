package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every InputError via errors.Is
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a request that cannot be processed at all
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidInput) match
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
