package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrLockTimeout is returned when a collection lock could not be acquired
	// before the store's lock timeout (or the caller's deadline) expired.
	ErrLockTimeout = errors.New("collection lock timeout")
)

// StorageError wraps any lock, I/O or decode failure on a collection. A read
// that fails is always reported as a StorageError, never as an empty collection.
type StorageError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
