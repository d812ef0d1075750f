// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides stub capabilities for testing strategies
// without touching real mappings: a heap-backed memory resource with
// failure injection and a recording advice operation.
package fake

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
)

// Resource is a heap-backed api.MemoryResource. Reservation counts are
// observable so tests can prove (or rule out) pool growth, and
// exhaustion is injectable via FailAfter or Limit.
type Resource struct {
	name string

	mu     sync.Mutex
	blocks map[uintptr][]byte
	used   int64
	allocs int
	frees  int

	// FailAfter makes every Allocate past the first N fail with
	// ErrOutOfMemory. Zero disables the injection.
	FailAfter int
	// Limit bounds total outstanding bytes. Zero means unlimited.
	Limit int64
}

// NewResource returns a fake resource with the given identity.
func NewResource(name string) *Resource {
	return &Resource{name: name, blocks: make(map[uintptr][]byte)}
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAfter > 0 && r.allocs >= r.FailAfter {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "fake resource %q exhausted by injection", r.name)
	}
	if r.Limit > 0 && r.used+bytes > r.Limit {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "fake resource %q over limit", r.name)
	}
	block := make([]byte, bytes)
	ptr := unsafe.Pointer(&block[0])
	r.blocks[uintptr(ptr)] = block
	r.used += bytes
	r.allocs++
	return ptr, nil
}

func (r *Resource) Deallocate(ptr unsafe.Pointer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	block, ok := r.blocks[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not reserved from fake resource %q", r.name)
	}
	delete(r.blocks, uintptr(ptr))
	r.used -= int64(len(block))
	r.frees++
	return nil
}

// Allocations reports how many reservations have been made.
func (r *Resource) Allocations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocs
}

// Frees reports how many reservations have been returned.
func (r *Resource) Frees() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frees
}

// Outstanding reports bytes currently reserved.
func (r *Resource) Outstanding() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used
}

var _ api.MemoryResource = (*Resource)(nil)
