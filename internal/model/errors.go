package model

import "errors"

var (
	// ErrNotFound is returned when a script is not found under the trusted root.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a script name is not valid (e.g. it escapes the trusted root).
	ErrNotValid = errors.New("not valid")
	// ErrTimeout is returned when a script exceeded its execution deadline.
	ErrTimeout = errors.New("timeout")
)
