// Package repository maps entity collections onto store keys. Each
// collection is one JSON array under one key, read and written whole.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/giygas/pharmacie-api/interfaces"
)

var (
	// ErrDuplicateID is returned when inserting an id already in the collection.
	ErrDuplicateID = errors.New("repository: duplicate id")
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("repository: stored value is not a valid collection")
)

// Snapshot is a loaded collection: the items in stored order plus an index
// from id to position. The first item wins when ids repeat.
type Snapshot[T any] struct {
	items []T
	index map[string]int
	idOf  func(T) string
}

func newSnapshot[T any](items []T, idOf func(T) string) *Snapshot[T] {
	s := &Snapshot[T]{items: items, idOf: idOf}
	s.reindex()
	return s
}

func (s *Snapshot[T]) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, item := range s.items {
		id := s.idOf(item)
		if _, seen := s.index[id]; !seen {
			s.index[id] = i
		}
	}
}

// Items returns a copy of the items in stored order
func (s *Snapshot[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Snapshot[T]) Len() int { return len(s.items) }

// Get returns the item with id
func (s *Snapshot[T]) Get(id string) (T, bool) {
	if i, ok := s.index[id]; ok {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Snapshot[T]) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Insert appends v, refusing an id already present
func (s *Snapshot[T]) Insert(v T) error {
	id := s.idOf(v)
	if s.Has(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, v)
	return nil
}

// Put replaces the item with the same id, or appends it
func (s *Snapshot[T]) Put(v T) {
	id := s.idOf(v)
	if i, ok := s.index[id]; ok {
		s.items[i] = v
		return
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, v)
}

// Delete removes every item with id and reports whether there was one
func (s *Snapshot[T]) Delete(id string) bool {
	if !s.Has(id) {
		return false
	}
	kept := s.items[:0:0]
	for _, item := range s.items {
		if s.idOf(item) != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.reindex()
	return true
}

// Filter returns the items for which keep is true, in stored order
func (s *Snapshot[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range s.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Collection knows the key a collection lives under and how to identify an item.
type Collection[T any] struct {
	Key  string
	IDOf func(T) string
}

// Load reads and decodes the collection. An absent key is an empty collection.
func (c Collection[T]) Load(ctx context.Context, r interfaces.KVReader) (*Snapshot[T], error) {
	raw, found, err := r.Get(ctx, c.Key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.Key, err)
	}

	items := make([]T, 0)
	if found && len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("load %s: %w: %v", c.Key, ErrCorrupt, err)
		}
		if items == nil {
			items = make([]T, 0)
		}
	}
	return newSnapshot(items, c.IDOf), nil
}

// Save encodes the whole collection and writes it back
func (c Collection[T]) Save(ctx context.Context, w interfaces.KVWriter, s *Snapshot[T]) error {
	items := s.items
	if items == nil {
		items = make([]T, 0)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.Key, err)
	}
	if err := w.Set(ctx, c.Key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.Key, err)
	}
	return nil
}
