package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const defaultLockRetry = 10 * time.Millisecond

// FileLocker takes flock(2) advisory locks on <dir>/<kind>.json.lock. The
// lock is honoured by every process (and goroutine) that goes through a
// FileLocker on the same directory.
type FileLocker struct {
	dir   string
	retry time.Duration
}

func NewFileLocker(dir string) (*FileLocker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file locker: %w", err)
	}
	return &FileLocker{dir: dir, retry: defaultLockRetry}, nil
}

func (l *FileLocker) Lock(ctx context.Context, kind Kind) (func() error, error) {
	fl := flock.New(filepath.Join(l.dir, string(kind)+".json.lock"))
	ok, err := fl.TryLockContext(ctx, l.retry)
	if err != nil {
		return nil, err
	}
	if !ok {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, ErrLockTimeout
	}
	return fl.Unlock, nil
}
