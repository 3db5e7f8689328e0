// Package kvstore holds the key-value backends entity collections are
// persisted in: an in-process map, a SQL table through gorm, and redis.
package kvstore

import (
	"context"
	"errors"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/pharmacie-api/interfaces"
)

// ErrConflict is returned by Update when another writer changed a key the
// transaction depended on before it could commit.
var ErrConflict = errors.New("kvstore: concurrent modification")

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("kvstore: store closed")

// Compile-time check to ensure MemoryStore implements TransactionalKVStore
var _ interfaces.TransactionalKVStore = (*MemoryStore)(nil)

// MemoryStore keeps every value in a map that is replaced as a whole on each
// write, so readers never take a lock.
type MemoryStore struct {
	entries     atomic.Value // map[string][]byte
	lastUpdated atomic.Value // time.Time
	closed      atomic.Bool
	mu          sync.Mutex // serializes writers
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.entries.Store(make(map[string][]byte))
	s.lastUpdated.Store(time.Time{})
	return s
}

func (s *MemoryStore) snapshot() map[string][]byte {
	if v := s.entries.Load(); v != nil {
		if m, ok := v.(map[string][]byte); ok {
			return m
		}
	}
	return map[string][]byte{}
}

// Get returns a copy of the value under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.check(ctx); err != nil {
		return nil, false, err
	}
	v, ok := s.snapshot()[key]
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

// Set replaces the value under key
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.snapshot())
	next[key] = cloneBytes(value)
	s.swap(next)
	return nil
}

// Update runs fn against a private overlay and publishes its writes in one
// swap when fn returns nil. Writers are serialized for the whole call.
func (s *MemoryStore) Update(ctx context.Context, fn func(tx interfaces.KVTx) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{base: s.snapshot(), writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(tx.writes) == 0 {
		return nil
	}

	next := maps.Clone(tx.base)
	maps.Copy(next, tx.writes)
	s.swap(next)
	return nil
}

func (s *MemoryStore) swap(next map[string][]byte) {
	s.entries.Store(next)
	s.lastUpdated.Store(time.Now())
}

// LastUpdated returns the time of the last committed write
func (s *MemoryStore) LastUpdated() time.Time {
	if v, ok := s.lastUpdated.Load().(time.Time); ok {
		return v
	}
	return time.Time{}
}

// Ping reports whether the store is usable
func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.check(ctx)
}

// Close marks the store closed, the data is dropped with it
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

type memoryTx struct {
	base   map[string][]byte
	writes map[string][]byte
}

func (tx *memoryTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if v, ok := tx.writes[key]; ok {
		return cloneBytes(v), true, nil
	}
	if v, ok := tx.base[key]; ok {
		return cloneBytes(v), true, nil
	}
	return nil, false, nil
}

func (tx *memoryTx) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.writes[key] = cloneBytes(value)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
