package repository

import (
	"context"
	"sync"
)

// MemoryBackend is a simple in-memory backend used for unit tests and
// single-process runs without persistence.
type MemoryBackend struct {
	mu    sync.RWMutex
	store map[Kind][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{store: make(map[Kind][]byte)}
}

func (m *MemoryBackend) Read(_ context.Context, kind Kind) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[kind]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), d...), nil
}

func (m *MemoryBackend) Write(_ context.Context, kind Kind, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[kind] = append([]byte(nil), data...)
	return nil
}

// MemoryLocker serializes access per collection inside one process. Each kind
// is a one-slot semaphore so that waiting honours the context deadline.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[Kind]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[Kind]chan struct{})}
}

func (l *MemoryLocker) slot(kind Kind) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[kind]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[kind] = ch
	}
	return ch
}

func (l *MemoryLocker) Lock(ctx context.Context, kind Kind) (func() error, error) {
	ch := l.slot(kind)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() error {
			once.Do(func() { <-ch })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
