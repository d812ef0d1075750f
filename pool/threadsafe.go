// File: pool/threadsafe.go
// Package pool mutual-exclusion decorator.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/tracking"
)

// ThreadSafe serializes every operation on a wrapped strategy,
// accounting queries included, through one lock. The wrapped strategy
// never sees concurrent mutation. This is a decorator, not a new
// allocation algorithm; the lock is coarse: no allocate/deallocate
// overlap even across unrelated regions.
type ThreadSafe struct {
	name  string
	inner api.AllocationStrategy
	table *tracking.Table
	mu    sync.Mutex
}

// NewThreadSafe wraps inner.
func NewThreadSafe(name string, inner api.AllocationStrategy, table *tracking.Table) *ThreadSafe {
	return &ThreadSafe{name: name, inner: inner, table: table}
}

func (t *ThreadSafe) Allocate(bytes int64) (unsafe.Pointer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ptr, err := t.inner.Allocate(bytes)
	if err != nil {
		return nil, err
	}
	// Own the record so pointer-only routing re-enters through the
	// lock instead of reaching the unguarded inner strategy.
	if err := t.table.Reassign(ptr, t); err != nil {
		_ = t.inner.Deallocate(ptr)
		return nil, err
	}
	return ptr, nil
}

func (t *ThreadSafe) Deallocate(ptr unsafe.Pointer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.Deallocate(ptr)
}

func (t *ThreadSafe) CurrentSize() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.CurrentSize()
}

func (t *ThreadSafe) HighWatermark() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.HighWatermark()
}

func (t *ThreadSafe) ActualSize() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inner.ActualSize()
}

func (t *ThreadSafe) Name() string { return t.name }

// Resource exposes the bottom resource when the wrapped strategy holds
// one. Pools layered over it reserve from the resource directly, which
// is safe: resources carry their own locks.
func (t *ThreadSafe) Resource() api.MemoryResource {
	if rh, ok := t.inner.(api.ResourceHolder); ok {
		return rh.Resource()
	}
	return nil
}

var _ api.AllocationStrategy = (*ThreadSafe)(nil)
