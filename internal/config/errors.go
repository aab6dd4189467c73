package config

import (
	"errors"
	"fmt"
)

// ErrInvalid matches every configuration error via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error is a configuration value that cannot be used. Operations fail with
// it before doing any work.
type Error struct {
	Key     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Key, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Key, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}
