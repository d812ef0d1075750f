// File: pool/passthrough.go
// Package pool resource-fronting strategy.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/tracking"
)

// Passthrough fronts a raw physical resource with the strategy
// contract: every request goes straight through, one reservation per
// allocation. The manager registers one Passthrough per physical
// resource under its fixed name ("HOST", ...), which is what pools and
// decorators are then layered over.
type Passthrough struct {
	name  string
	res   api.MemoryResource
	table *tracking.Table
	accounting
	live map[uintptr]int64
}

// NewPassthrough fronts res under the given name.
func NewPassthrough(name string, res api.MemoryResource, table *tracking.Table) *Passthrough {
	return &Passthrough{
		name:  name,
		res:   res,
		table: table,
		live:  make(map[uintptr]int64),
	}
}

func (p *Passthrough) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes).
			WithContext("allocator", p.name)
	}
	ptr, err := p.res.Allocate(bytes)
	if err != nil {
		return nil, err
	}
	if err := p.table.Register(ptr, bytes, p); err != nil {
		_ = p.res.Deallocate(ptr)
		return nil, err
	}
	p.live[uintptr(ptr)] = bytes
	p.onAllocate(bytes, bytes)
	return ptr, nil
}

func (p *Passthrough) Deallocate(ptr unsafe.Pointer) error {
	bytes, ok := p.live[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not allocated by %q", p.name).
			WithContext("ptr", uintptr(ptr))
	}
	if err := p.res.Deallocate(ptr); err != nil {
		return err
	}
	if _, err := p.table.Deregister(ptr); err != nil {
		return err
	}
	delete(p.live, uintptr(ptr))
	// A passthrough releases its reservation together with the
	// allocation, so actual shrinks here.
	p.onDeallocate(bytes, bytes)
	return nil
}

func (p *Passthrough) Name() string { return p.name }

// Resource exposes the fronted physical resource for pools layered
// over this allocator's name.
func (p *Passthrough) Resource() api.MemoryResource { return p.res }

var (
	_ api.AllocationStrategy = (*Passthrough)(nil)
	_ api.ResourceHolder     = (*Passthrough)(nil)
)
