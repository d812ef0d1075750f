// File: api/resource.go
// Package api defines the raw memory capabilities consumed by pools.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "unsafe"

// Well-known physical resource names. HOST is always registered;
// the rest depend on platform and build-time accelerator support.
const (
	ResourceHost    = "HOST"
	ResourceDevice  = "DEVICE"
	ResourceUnified = "UM"
	ResourcePinned  = "PINNED"
)

// CPUDeviceID is the device ordinal naming the host CPU in advice
// operations targeting a processor.
const CPUDeviceID = -1

// MemoryResource is the capability pair every strategy ultimately draws
// from: one coarse reservation in, one release out. Implementations
// must be safe for concurrent use, since unrelated pools may grow from
// the same resource simultaneously. Identity is opaque: exactly one
// instance exists per physical resource kind.
type MemoryResource interface {
	// Name returns the fixed identity of the resource, e.g. "HOST".
	Name() string

	// Allocate reserves bytes of raw memory. Fails with ErrOutOfMemory
	// when the physical resource is exhausted.
	Allocate(bytes int64) (unsafe.Pointer, error)

	// Deallocate returns a reservation previously produced by Allocate.
	Deallocate(ptr unsafe.Pointer) error
}

// AdviceOp is the external memory-advice capability: a named placement
// or usage hint applied to an allocated region. Implementations are
// best-effort; a hint that the platform cannot express is a no-op.
type AdviceOp interface {
	// Name returns the advice kind, e.g. "READ_MOSTLY".
	Name() string

	// Apply attaches the hint to [ptr, ptr+bytes) for the given target
	// device (CPUDeviceID for the host processor).
	Apply(ptr unsafe.Pointer, bytes int64, device int) error
}
