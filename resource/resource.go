// File: resource/resource.go
// Package resource implements the physical memory capability pairs.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package resource

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/logutil"
	"go.uber.org/zap"
)

// mappedResource hands out coarse page-backed reservations and keeps
// every live mapping keyed by its base address so Deallocate can
// recover the mapping length. Safe for concurrent use: unrelated pools
// grow from the same resource.
type mappedResource struct {
	name   string
	pinned bool
	limit  int64 // 0 means unlimited

	mu     sync.Mutex
	used   int64
	blocks map[uintptr][]byte
}

// NewHost returns the ordinary host memory resource.
func NewHost() api.MemoryResource {
	return &mappedResource{name: api.ResourceHost, blocks: make(map[uintptr][]byte)}
}

// NewUnified returns the host-side rendition of unified memory:
// plain anonymous mappings that accept placement advice.
func NewUnified() api.MemoryResource {
	return &mappedResource{name: api.ResourceUnified, blocks: make(map[uintptr][]byte)}
}

// NewPinned returns page-locked host memory. Locking is best-effort:
// when RLIMIT_MEMLOCK denies the lock the mapping is still usable,
// only unpinned.
func NewPinned() api.MemoryResource {
	return &mappedResource{name: api.ResourcePinned, pinned: true, blocks: make(map[uintptr][]byte)}
}

func (r *mappedResource) Name() string { return r.name }

func (r *mappedResource) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes).
			WithContext("resource", r.name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && r.used+bytes > r.limit {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "%s resource exhausted", r.name).
			WithContext("requested", bytes).
			WithContext("available", r.limit-r.used)
	}
	block, err := sysAlloc(bytes)
	if err != nil {
		return nil, api.Errorf(api.ErrCodeOutOfMemory, "%s reservation of %d bytes failed: %v", r.name, bytes, err)
	}
	if r.pinned {
		if err := sysPin(block); err != nil {
			logutil.Warn("page lock failed, mapping left unpinned",
				zap.String("resource", r.name),
				zap.Int64("bytes", bytes),
				zap.Error(err))
		}
	}
	ptr := unsafe.Pointer(&block[0])
	r.blocks[uintptr(ptr)] = block
	r.used += bytes
	return ptr, nil
}

func (r *mappedResource) Deallocate(ptr unsafe.Pointer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	block, ok := r.blocks[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not reserved from %s", r.name).
			WithContext("ptr", uintptr(ptr))
	}
	delete(r.blocks, uintptr(ptr))
	r.used -= int64(len(block))
	return sysFree(block)
}

// Close releases every live reservation. Only the manager calls this,
// at process teardown.
func (r *mappedResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for ptr, block := range r.blocks {
		delete(r.blocks, ptr)
		if err := sysFree(block); err != nil && first == nil {
			first = err
		}
	}
	r.used = 0
	return first
}

var _ api.MemoryResource = (*mappedResource)(nil)

// Builtin returns one instance of every physical resource this build
// supports, HOST first.
func Builtin() []api.MemoryResource {
	out := []api.MemoryResource{NewHost()}
	out = append(out, platformResources()...)
	out = append(out, accelResources()...)
	return out
}
