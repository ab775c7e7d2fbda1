package store

import "errors"

var (
	// ErrLocked signals transient contention on the index. Callers are
	// expected to retry; it is never a hard failure.
	ErrLocked = errors.New("index locked")

	// ErrReadOnly signals a mutation against an index opened read-only.
	ErrReadOnly = errors.New("index in read-only mode")
)
