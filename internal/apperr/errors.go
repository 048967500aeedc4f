// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrEmptyCapture is returned when capture content is empty after trim.
	// Reported to the user before any write happens.
	ErrEmptyCapture = errors.New("capture content is empty")

	// ErrNoDailyNote is returned when no day document can be resolved.
	// Surfaces a specific user-facing message rather than a generic failure.
	ErrNoDailyNote = errors.New("no daily note could be resolved for today")
)
