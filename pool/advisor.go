// File: pool/advisor.go
// Package pool memory-advice decorator.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/advice"
	"github.com/momentics/hioload-mem/internal/tracking"
)

// Advisor wraps an existing strategy and attaches a placement or usage
// hint to every region it hands out. It manages no memory itself:
// allocation and reclamation delegate unchanged, so locality hints can
// be layered on any pool without duplicating its logic.
type Advisor struct {
	name   string
	inner  api.AllocationStrategy
	table  *tracking.Table
	op     api.AdviceOp
	device int

	live    map[uintptr]int64
	current int64
	high    int64
}

// NewAdvisor decorates inner with the named advice kind. Fails with
// ErrInvalidAdvice when the kind is not recognized, before any
// allocation can happen.
func NewAdvisor(name string, inner api.AllocationStrategy, table *tracking.Table, kind string, opts ...AdvisorOption) (*Advisor, error) {
	cfg := advisorConfig{device: 0}
	for _, opt := range opts {
		opt(&cfg)
	}
	op := cfg.op
	if op == nil {
		var err error
		op, err = advice.Find(kind)
		if err != nil {
			return nil, err
		}
	}
	return &Advisor{
		name:   name,
		inner:  inner,
		table:  table,
		op:     op,
		device: cfg.device,
		live:   make(map[uintptr]int64),
	}, nil
}

func (a *Advisor) Allocate(bytes int64) (unsafe.Pointer, error) {
	ptr, err := a.inner.Allocate(bytes)
	if err != nil {
		return nil, err
	}
	if err := a.op.Apply(ptr, bytes, a.device); err != nil {
		_ = a.inner.Deallocate(ptr)
		return nil, err
	}
	// Own the record so pointer-only routing reaches this wrapper.
	if err := a.table.Reassign(ptr, a); err != nil {
		_ = a.inner.Deallocate(ptr)
		return nil, err
	}
	rec, _ := a.table.Lookup(ptr)
	a.live[uintptr(ptr)] = rec.Size
	a.current += rec.Size
	if a.current > a.high {
		a.high = a.current
	}
	return ptr, nil
}

// Deallocate releases a pointer this advisor handed out. Pointers
// drawn from the wrapped strategy directly are foreign here, even
// though the wrapped strategy could release them.
func (a *Advisor) Deallocate(ptr unsafe.Pointer) error {
	bytes, ok := a.live[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not allocated by %q", a.name).
			WithContext("ptr", uintptr(ptr))
	}
	if err := a.inner.Deallocate(ptr); err != nil {
		return err
	}
	delete(a.live, uintptr(ptr))
	a.current -= bytes
	return nil
}

func (a *Advisor) CurrentSize() int64   { return a.current }
func (a *Advisor) HighWatermark() int64 { return a.high }

// ActualSize reports the wrapped strategy's reservations; the advisor
// reserves nothing of its own.
func (a *Advisor) ActualSize() int64 { return a.inner.ActualSize() }

func (a *Advisor) Name() string { return a.name }

// Advice reports the configured advice kind.
func (a *Advisor) Advice() string { return a.op.Name() }

// Resource exposes the bottom resource when the wrapped strategy holds
// one.
func (a *Advisor) Resource() api.MemoryResource {
	if rh, ok := a.inner.(api.ResourceHolder); ok {
		return rh.Resource()
	}
	return nil
}

var _ api.AllocationStrategy = (*Advisor)(nil)
