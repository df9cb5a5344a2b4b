package task

import "errors"

// Stable error taxonomy surfaced to callers. Validation errors are raised
// locally before submission and again inside the engine; authorization and
// not-found errors are terminal and never retried.
var (
	ErrTitleTooLong       = errors.New("title can't be more than 100 chars")
	ErrDescriptionTooLong = errors.New("description can't be more than 1000 chars")
	ErrTitleIsEmpty       = errors.New("title is empty")
	ErrDescriptionIsEmpty = errors.New("description is empty")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTitleNotFound      = errors.New("title not found")

	// ErrTaskAlreadyExists is the conflict raised when a create targets an
	// address that already holds an active task.
	ErrTaskAlreadyExists = errors.New("task already exists for this title")
)

// ErrDecode wraps all account deserialization failures.
var ErrDecode = errors.New("malformed task account data")

// ErrAddressMismatch means the target address does not re-derive from the
// stored (author, title) pair. A hard validation failure, never retryable.
var ErrAddressMismatch = errors.New("address does not match derivation")
