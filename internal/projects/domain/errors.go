package domain

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrInvalidStatus = errors.New("invalid project status")
	// ErrSlugConflict is returned by the repository when the slug unique index
	// rejects a write that passed the pre-check.
	ErrSlugConflict = errors.New("slug already taken")
)
