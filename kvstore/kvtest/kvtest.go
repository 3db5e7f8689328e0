// Package kvtest has store wrappers for tests: a store without transactions
// and a store that fails chosen writes.
package kvtest

import (
	"context"
	"errors"
	"sync"

	"github.com/giygas/pharmacie-api/interfaces"
)

// ErrInjected is the error returned by a failing write.
var ErrInjected = errors.New("kvtest: injected failure")

// Plain hides Update, so callers see a store with no transactions.
type Plain struct {
	inner interfaces.KVStore

	mu     sync.Mutex
	writes []string
	failOn map[int]bool // 1-based write numbers to fail
}

var _ interfaces.KVStore = (*Plain)(nil)

// NewPlain wraps inner
func NewPlain(inner interfaces.KVStore) *Plain {
	return &Plain{inner: inner, failOn: make(map[int]bool)}
}

// FailWrite makes the n-th Set from now on (1-based) fail without writing.
func (p *Plain) FailWrite(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOn[len(p.writes)+n] = true
}

// Writes returns the keys written so far, failed writes included
func (p *Plain) Writes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.writes))
	copy(out, p.writes)
	return out
}

func (p *Plain) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, key)
}

func (p *Plain) Set(ctx context.Context, key string, value []byte) error {
	p.mu.Lock()
	p.writes = append(p.writes, key)
	fail := p.failOn[len(p.writes)]
	p.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return p.inner.Set(ctx, key, value)
}

func (p *Plain) Ping(ctx context.Context) error { return p.inner.Ping(ctx) }

func (p *Plain) Close() error { return p.inner.Close() }
