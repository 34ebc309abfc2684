package model

import (
	"errors"
	"fmt"
)

// Domain failure taxonomy. Every public operation returns one of these or a
// *StorageError; none are fatal and none are retried implicitly.
var (
	// ErrSlotUnavailable means the requested (advisor, date, time) is not
	// currently bookable. Surfaced to the UI as "pick another slot".
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the caller lacks the required capability.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrBookUnavailable means the book is already borrowed by someone else.
	ErrBookUnavailable = errors.New("book unavailable")

	// ErrInvalidInput means a request failed boundary validation.
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError wraps a persistence-layer failure. The caller may retry the
// whole operation; a retry re-runs the full check-and-commit, never a raw
// write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a storage failure for operation op.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is a persistence failure.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
