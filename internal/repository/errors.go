package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist for the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("already exists")
)
