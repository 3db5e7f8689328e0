package repository

import (
	"context"
	"errors"

	"github.com/giygas/pharmacie-api/interfaces"
)

// Repository gives item-level operations over one collection bound to a
// store or to a transaction.
type Repository[T any] struct {
	coll Collection[T]
	rw   interfaces.KVReadWriter
}

// NewRepository binds coll to rw
func NewRepository[T any](coll Collection[T], rw interfaces.KVReadWriter) *Repository[T] {
	return &Repository[T]{coll: coll, rw: rw}
}

// Bind returns the same repository reading and writing through rw
func (r *Repository[T]) Bind(rw interfaces.KVReadWriter) *Repository[T] {
	return &Repository[T]{coll: r.coll, rw: rw}
}

func (r *Repository[T]) Key() string { return r.coll.Key }

// Load returns the whole collection
func (r *Repository[T]) Load(ctx context.Context) (*Snapshot[T], error) {
	return r.coll.Load(ctx, r.rw)
}

// Save writes the whole collection
func (r *Repository[T]) Save(ctx context.Context, s *Snapshot[T]) error {
	return r.coll.Save(ctx, r.rw, s)
}

// List returns every item in stored order
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	s, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Items(), nil
}

// Get returns the item with id. A miss is (zero, false, nil).
func (r *Repository[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s, err := r.Load(ctx)
	if err != nil {
		return zero, false, err
	}
	v, ok := s.Get(id)
	return v, ok, nil
}

// Create appends v, failing with ErrDuplicateID if its id exists
func (r *Repository[T]) Create(ctx context.Context, v T) error {
	return r.Mutate(ctx, func(s *Snapshot[T]) error {
		return s.Insert(v)
	})
}

// Put inserts or replaces v
func (r *Repository[T]) Put(ctx context.Context, v T) error {
	return r.Mutate(ctx, func(s *Snapshot[T]) error {
		s.Put(v)
		return nil
	})
}

// Delete removes id and reports whether it was there. Nothing is written on a miss.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.Mutate(ctx, func(s *Snapshot[T]) error {
		deleted = s.Delete(id)
		if !deleted {
			return errNoChange
		}
		return nil
	})
	return deleted, err
}

// Replace overwrites the collection with items
func (r *Repository[T]) Replace(ctx context.Context, items []T) error {
	cp := make([]T, len(items))
	copy(cp, items)
	return r.Save(ctx, newSnapshot(cp, r.coll.IDOf))
}

// Mutate loads the collection, applies fn and saves the result. When bound
// to a transactional store the three steps run in one Update. If fn returns
// an error nothing is saved.
func (r *Repository[T]) Mutate(ctx context.Context, fn func(s *Snapshot[T]) error) error {
	apply := func(rw interfaces.KVReadWriter) error {
		s, err := r.coll.Load(ctx, rw)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		return r.coll.Save(ctx, rw, s)
	}

	var err error
	if txs, ok := r.rw.(interfaces.TransactionalKVStore); ok {
		err = txs.Update(ctx, func(tx interfaces.KVTx) error { return apply(tx) })
	} else {
		err = apply(r.rw)
	}
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}
