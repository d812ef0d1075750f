// File: api/strategy.go
// Package api defines the AllocationStrategy contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "unsafe"

// AllocationStrategy is the polymorphic contract every pooling, bump
// and wrapping algorithm implements. Strategies are NOT goroutine-safe
// unless wrapped by pool.ThreadSafe; concurrent calls into a bare
// strategy instance are undefined behavior.
//
// Counter semantics:
//   - CurrentSize: bytes currently outstanding to callers. Decreases
//     only on Deallocate.
//   - HighWatermark: maximum CurrentSize ever reached. Never decreases.
//   - ActualSize: bytes reserved from the underlying resource, always
//     >= CurrentSize. Decreases only when a strategy explicitly
//     releases reserved memory.
//
// A failed Allocate leaves all three counters unchanged.
type AllocationStrategy interface {
	// Allocate returns a pointer to at least bytes of memory, or fails
	// with ErrOutOfMemory when the underlying resource cannot satisfy
	// the request or the growth it would require.
	Allocate(bytes int64) (unsafe.Pointer, error)

	// Deallocate releases a pointer previously produced by this
	// strategy. Fails with ErrInvalidPointer when ptr has no live
	// allocation record owned here, including double-free.
	Deallocate(ptr unsafe.Pointer) error

	// CurrentSize reports bytes currently outstanding to callers.
	CurrentSize() int64

	// HighWatermark reports the peak of CurrentSize.
	HighWatermark() int64

	// ActualSize reports bytes reserved from the underlying resource.
	ActualSize() int64

	// Name returns the registered name of the strategy.
	Name() string
}

// ResourceHolder is implemented by strategies that draw their
// reservations from a raw MemoryResource. The manager uses it to
// resolve the backing resource when a new pool is layered over an
// existing named allocator: reservations always come from the physical
// resource at the bottom of the stack, never from an intermediate pool.
type ResourceHolder interface {
	Resource() MemoryResource
}
