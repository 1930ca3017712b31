package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gogotex/gogotex/backend/course-service/pkg/logger"
	"github.com/gogotex/gogotex/backend/course-service/pkg/metrics"
)

// Kind names one physical collection.
type Kind string

const (
	KindCourses Kind = "courses"
	KindModules Kind = "modules"
	KindLessons Kind = "lessons"
)

// AllKinds is the global lock order. Every multi-collection operation acquires
// locks in this order so that two operations can never deadlock.
var AllKinds = []Kind{KindCourses, KindModules, KindLessons}

func (k Kind) rank() int {
	for i, o := range AllKinds {
		if o == k {
			return i
		}
	}
	return len(AllKinds)
}

// Backend reads and writes the serialized form of one collection. A collection
// that was never written reads as nil data with a nil error.
type Backend interface {
	Read(ctx context.Context, kind Kind) ([]byte, error)
	Write(ctx context.Context, kind Kind, data []byte) error
}

// Locker provides an exclusive advisory lock per collection. Lock blocks until
// the lock is held or ctx is done; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, kind Kind) (unlock func() error, err error)
}

const DefaultLockTimeout = 5 * time.Second

// Store is the record store: locked, whole-collection reads and writes over a
// Backend.
type Store struct {
	backend     Backend
	locker      Locker
	lockTimeout time.Duration
}

// NewStore wires a backend and a locker. lockTimeout bounds every lock wait;
// zero selects DefaultLockTimeout.
func NewStore(b Backend, l Locker, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{backend: b, locker: l, lockTimeout: lockTimeout}
}

// NewMemoryStore returns a store on an in-process backend and locker.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryBackend(), NewMemoryLocker(), 0)
}

// Load reads one collection under its lock and decodes it into out (a pointer
// to a slice). A missing or empty collection leaves out untouched.
func (s *Store) Load(ctx context.Context, kind Kind, out any) error {
	release, err := s.lock(ctx, kind)
	if err != nil {
		return err
	}
	defer release()
	return s.read(ctx, kind, out)
}

// Save encodes v and replaces one collection under its lock.
func (s *Store) Save(ctx context.Context, kind Kind, v any) error {
	data, err := encode(v)
	if err != nil {
		return s.fail("encode", kind, err)
	}
	release, err := s.lock(ctx, kind)
	if err != nil {
		return err
	}
	defer release()
	if err := s.backend.Write(ctx, kind, data); err != nil {
		return s.fail("write", kind, err)
	}
	return nil
}

// Update runs fn with the locks of every listed collection held for the whole
// read-modify-write span. Locks are taken in global order. Collections staged
// with Tx.Put are written only if fn returns nil; otherwise nothing is written.
func (s *Store) Update(ctx context.Context, kinds []Kind, fn func(tx *Tx) error) error {
	ordered := orderKinds(kinds)
	release, err := s.lockAll(ctx, ordered)
	if err != nil {
		return err
	}
	defer release()

	tx := &Tx{ctx: ctx, store: s, held: make(map[Kind]bool, len(ordered)), staged: map[Kind][]byte{}}
	for _, k := range ordered {
		tx.held[k] = true
	}
	if err := fn(tx); err != nil {
		return err
	}
	for _, k := range ordered {
		data, ok := tx.staged[k]
		if !ok {
			continue
		}
		if err := s.backend.Write(ctx, k, data); err != nil {
			return s.fail("write", k, err)
		}
	}
	return nil
}

// Snapshot returns the raw serialized form of every collection, read while all
// collection locks are held, so the three views are mutually consistent.
func (s *Store) Snapshot(ctx context.Context) (map[Kind][]byte, error) {
	release, err := s.lockAll(ctx, AllKinds)
	if err != nil {
		return nil, err
	}
	defer release()

	out := make(map[Kind][]byte, len(AllKinds))
	for _, k := range AllKinds {
		data, err := s.backend.Read(ctx, k)
		if err != nil {
			return nil, s.fail("read", k, err)
		}
		if len(bytes.TrimSpace(data)) == 0 {
			data = []byte("[]")
		}
		out[k] = data
	}
	return out, nil
}

// Ping reads the courses collection straight from the backend without taking
// a lock, so health checks never queue behind writers.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.backend.Read(ctx, KindCourses); err != nil {
		return s.fail("read", KindCourses, err)
	}
	return nil
}

func (s *Store) lockAll(ctx context.Context, ordered []Kind) (func(), error) {
	releases := make([]func(), 0, len(ordered))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, k := range ordered {
		r, err := s.lock(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, r)
	}
	return releaseAll, nil
}

func (s *Store) lock(ctx context.Context, kind Kind) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	start := time.Now()
	unlock, err := s.locker.Lock(lctx, kind)
	metrics.LockWait.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrLockTimeout, s.lockTimeout)
		}
		return nil, s.fail("lock", kind, err)
	}
	return func() {
		if err := unlock(); err != nil {
			logger.Warnf("release %s lock: %v", kind, err)
		}
	}, nil
}

func (s *Store) read(ctx context.Context, kind Kind, out any) error {
	data, err := s.backend.Read(ctx, kind)
	if err != nil {
		return s.fail("read", kind, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return s.fail("decode", kind, err)
	}
	return nil
}

func (s *Store) fail(op string, kind Kind, err error) error {
	metrics.StorageErrors.WithLabelValues(string(kind), op).Inc()
	logger.Errorf("storage %s %s: %v", op, kind, err)
	return &StorageError{Op: op, Kind: kind, Err: err}
}

// Tx is the view of the store inside Update. It may only touch the
// collections whose locks Update holds.
type Tx struct {
	ctx    context.Context
	store  *Store
	held   map[Kind]bool
	staged map[Kind][]byte
}

// Load decodes the current content of kind into out.
func (tx *Tx) Load(kind Kind, out any) error {
	if !tx.held[kind] {
		return fmt.Errorf("collection %s is not locked by this update", kind)
	}
	return tx.store.read(tx.ctx, kind, out)
}

// Put stages v as the new content of kind. Nothing is written until the
// update function returns successfully.
func (tx *Tx) Put(kind Kind, v any) error {
	if !tx.held[kind] {
		return fmt.Errorf("collection %s is not locked by this update", kind)
	}
	data, err := encode(v)
	if err != nil {
		return tx.store.fail("encode", kind, err)
	}
	tx.staged[kind] = data
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		data = []byte("[]")
	}
	return data, nil
}

func orderKinds(kinds []Kind) []Kind {
	seen := make(map[Kind]bool, len(kinds))
	out := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rank() < out[j].rank() })
	return out
}
