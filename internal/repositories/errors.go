package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every lookup that matches no record.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped when a unique constraint rejects a write.
	ErrDuplicate = errors.New("already exists")
)
