package repository

import "errors"

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a write violated a uniqueness constraint.
	ErrConflict = errors.New("repository: conflict")
)
