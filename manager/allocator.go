// File: manager/allocator.go
// Package manager Allocator facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package manager

import (
	"unsafe"

	"github.com/momentics/hioload-mem/api"
)

// Allocator is the thin handle application code allocates through: a
// name, the bound strategy, and a non-owning reference back to the
// manager for pointer-only introspection. Any number of handles may
// share one strategy; handles must not outlive their manager.
type Allocator struct {
	name     string
	strategy api.AllocationStrategy
	mgr      *Manager
}

// Allocate returns a pointer to bytes of memory from the bound
// strategy.
func (a *Allocator) Allocate(bytes int64) (unsafe.Pointer, error) {
	return a.strategy.Allocate(bytes)
}

// Deallocate releases an allocation through the bound strategy. The
// pointer must have a live record; anything else, double-free
// included, fails with ErrInvalidPointer before the strategy is
// consulted.
func (a *Allocator) Deallocate(ptr unsafe.Pointer) error {
	if _, ok := a.mgr.table.Lookup(ptr); !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "no live allocation for pointer").
			WithContext("allocator", a.name).
			WithContext("ptr", uintptr(ptr))
	}
	return a.strategy.Deallocate(ptr)
}

// Size reports the recorded byte count for a live allocation: the
// requested size, except for slab pools, which record whole slots.
func (a *Allocator) Size(ptr unsafe.Pointer) (int64, error) {
	return a.mgr.SizeOf(ptr)
}

// CurrentSize reports bytes currently outstanding from the bound
// strategy.
func (a *Allocator) CurrentSize() int64 { return a.strategy.CurrentSize() }

// HighWatermark reports the peak of CurrentSize.
func (a *Allocator) HighWatermark() int64 { return a.strategy.HighWatermark() }

// ActualSize reports bytes the bound strategy has reserved from its
// underlying resource.
func (a *Allocator) ActualSize() int64 { return a.strategy.ActualSize() }

// Name returns the registered name of the bound strategy.
func (a *Allocator) Name() string { return a.name }

// Strategy exposes the bound strategy for composition.
func (a *Allocator) Strategy() api.AllocationStrategy { return a.strategy }
