// File: pool/monotonic.go
// Package pool monotonic bump strategy.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/tracking"
)

// Monotonic allocates by advancing an offset through one block
// reserved up front. Individual objects are never reclaimed: the
// bookkeeping is an offset and a live-pointer set, which is the whole
// point for bounded short-lived allocation bursts where per-object free
// tracking is pure overhead. The block is released only when the
// manager tears the strategy down.
type Monotonic struct {
	name  string
	res   api.MemoryResource
	table *tracking.Table
	accounting

	block    unsafe.Pointer
	capacity int64
	offset   int64
	align    int64
	live     map[uintptr]int64
}

// NewMonotonic reserves capacity bytes from res and bumps through
// them. Fails with ErrOutOfMemory when the reservation itself fails.
func NewMonotonic(name string, res api.MemoryResource, table *tracking.Table, capacity int64, opts ...MonotonicOption) (*Monotonic, error) {
	cfg := monotonicConfig{alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&cfg)
	}
	if capacity <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "capacity must be positive, got %d", capacity).
			WithContext("allocator", name)
	}
	if cfg.alignment <= 0 || cfg.alignment&(cfg.alignment-1) != 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "alignment must be a power of two, got %d", cfg.alignment).
			WithContext("allocator", name)
	}
	block, err := res.Allocate(capacity)
	if err != nil {
		return nil, err
	}
	m := &Monotonic{
		name:     name,
		res:      res,
		table:    table,
		block:    block,
		capacity: capacity,
		align:    cfg.alignment,
		live:     make(map[uintptr]int64),
	}
	m.actual = capacity
	return m, nil
}

func (m *Monotonic) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes).
			WithContext("allocator", m.name)
	}
	off := (m.offset + m.align - 1) &^ (m.align - 1)
	// Subtraction form: off+bytes would overflow for huge requests.
	if bytes > m.capacity-off {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "monotonic capacity exhausted").
			WithContext("allocator", m.name).
			WithContext("requested", bytes).
			WithContext("remaining", m.capacity-off)
	}
	ptr := unsafe.Add(m.block, off)
	if err := m.table.Register(ptr, bytes, m); err != nil {
		return nil, err
	}
	m.offset = off + bytes
	m.live[uintptr(ptr)] = bytes
	m.onAllocate(bytes, 0)
	return ptr, nil
}

// Deallocate retires the pointer's tracking record so it can no longer
// be queried, but reclaims nothing: the offset never rewinds.
func (m *Monotonic) Deallocate(ptr unsafe.Pointer) error {
	bytes, ok := m.live[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not allocated by %q", m.name).
			WithContext("ptr", uintptr(ptr))
	}
	if _, err := m.table.Deregister(ptr); err != nil {
		return err
	}
	delete(m.live, uintptr(ptr))
	m.onDeallocate(bytes, 0)
	return nil
}

func (m *Monotonic) Name() string { return m.name }

// Resource exposes the underlying physical resource.
func (m *Monotonic) Resource() api.MemoryResource { return m.res }

// Release returns the reserved block to the underlying resource. Only
// the manager calls this, at teardown.
func (m *Monotonic) Release() error {
	if m.block == nil {
		return nil
	}
	err := m.res.Deallocate(m.block)
	m.block = nil
	m.onDeallocate(0, m.capacity)
	return err
}

var (
	_ api.AllocationStrategy = (*Monotonic)(nil)
	_ api.ResourceHolder     = (*Monotonic)(nil)
)
