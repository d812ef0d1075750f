// File: pool/fixed.go
// Package pool fixed-slot slab strategy.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"math"
	"unsafe"

	"github.com/RoaringBitmap/roaring"
	"github.com/eapache/queue"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/logutil"
	"github.com/momentics/hioload-mem/internal/tracking"
	"go.uber.org/zap"
)

// Fixed is a slab strategy for requests that always fit one slot size.
// It grows in chunks of a fixed slot count and keeps returned slots in
// a FIFO free list. Per-chunk occupancy bitmaps catch double-free and
// foreign pointers. Every allocation is accounted at the slot size,
// whatever byte count was requested.
type Fixed struct {
	name  string
	res   api.MemoryResource
	table *tracking.Table
	accounting

	slot       int64
	chunkSlots uint32
	freeSlots  *queue.Queue
	chunks     []*fixedChunk
}

type fixedChunk struct {
	base     uintptr
	span     int64
	occupied *roaring.Bitmap
}

// NewFixed builds a pool handing out slots of slotSize bytes from res.
func NewFixed(name string, res api.MemoryResource, table *tracking.Table, slotSize int64, opts ...FixedOption) (*Fixed, error) {
	cfg := fixedConfig{chunkSlots: DefaultChunkSlots}
	for _, opt := range opts {
		opt(&cfg)
	}
	if slotSize <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "slot size must be positive, got %d", slotSize).
			WithContext("allocator", name)
	}
	if cfg.chunkSlots == 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "chunk slot count must be positive").
			WithContext("allocator", name)
	}
	if slotSize > math.MaxInt64/int64(cfg.chunkSlots) {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "chunk of %d slots of %d bytes overflows", cfg.chunkSlots, slotSize).
			WithContext("allocator", name)
	}
	return &Fixed{
		name:       name,
		res:        res,
		table:      table,
		slot:       slotSize,
		chunkSlots: cfg.chunkSlots,
		freeSlots:  queue.New(),
	}, nil
}

// NewFixedFor builds a pool whose slot size is the size of T.
func NewFixedFor[T any](name string, res api.MemoryResource, table *tracking.Table, opts ...FixedOption) (*Fixed, error) {
	var zero T
	return NewFixed(name, res, table, int64(unsafe.Sizeof(zero)), opts...)
}

// SlotSize reports the fixed byte size of every slot.
func (f *Fixed) SlotSize() int64 { return f.slot }

// grow reserves one more chunk and queues its slots.
func (f *Fixed) grow() error {
	span := int64(f.chunkSlots) * f.slot
	base, err := f.res.Allocate(span)
	if err != nil {
		return err
	}
	ch := &fixedChunk{
		base:     uintptr(base),
		span:     span,
		occupied: roaring.New(),
	}
	f.chunks = append(f.chunks, ch)
	for i := uint32(0); i < f.chunkSlots; i++ {
		f.freeSlots.Add(ch.base + uintptr(int64(i)*f.slot))
	}
	f.actual += span
	logutil.Debug("fixed pool grew",
		zap.String("allocator", f.name),
		zap.Int64("chunk_bytes", span),
		zap.Int("chunks", len(f.chunks)))
	return nil
}

func (f *Fixed) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes).
			WithContext("allocator", f.name)
	}
	if bytes > f.slot {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "request of %d bytes exceeds %d-byte slots", bytes, f.slot).
			WithContext("allocator", f.name)
	}
	if f.freeSlots.Length() == 0 {
		if err := f.grow(); err != nil {
			return nil, err
		}
	}
	p := f.freeSlots.Remove().(uintptr)
	ch, idx, ok := f.slotOf(p)
	if !ok {
		return nil, api.Errorf(api.ErrCodeInvalidPointer, "free list corrupted").
			WithContext("allocator", f.name)
	}
	ptr := unsafe.Pointer(p)
	// The whole slot is handed out regardless of the requested count.
	if err := f.table.Register(ptr, f.slot, f); err != nil {
		f.freeSlots.Add(p)
		return nil, err
	}
	ch.occupied.Add(idx)
	f.onAllocate(f.slot, 0)
	return ptr, nil
}

func (f *Fixed) Deallocate(ptr unsafe.Pointer) error {
	ch, idx, ok := f.slotOf(uintptr(ptr))
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer is not a slot of %q", f.name).
			WithContext("ptr", uintptr(ptr))
	}
	if !ch.occupied.Contains(idx) {
		return api.Errorf(api.ErrCodeInvalidPointer, "slot already free").
			WithContext("allocator", f.name).
			WithContext("ptr", uintptr(ptr))
	}
	if _, err := f.table.Deregister(ptr); err != nil {
		return err
	}
	ch.occupied.Remove(idx)
	f.freeSlots.Add(uintptr(ptr))
	f.onDeallocate(f.slot, 0)
	return nil
}

// slotOf locates the chunk containing p and the slot index within it.
// Misaligned interior pointers do not name a slot.
func (f *Fixed) slotOf(p uintptr) (*fixedChunk, uint32, bool) {
	for _, ch := range f.chunks {
		if p < ch.base || p >= ch.base+uintptr(ch.span) {
			continue
		}
		off := int64(p - ch.base)
		if off%f.slot != 0 {
			return nil, 0, false
		}
		return ch, uint32(off / f.slot), true
	}
	return nil, 0, false
}

func (f *Fixed) Name() string { return f.name }

// Resource exposes the underlying physical resource.
func (f *Fixed) Resource() api.MemoryResource { return f.res }

// Release returns every reserved chunk to the underlying resource.
// Only the manager calls this, at teardown.
func (f *Fixed) Release() error {
	var first error
	for _, ch := range f.chunks {
		if err := f.res.Deallocate(unsafe.Pointer(ch.base)); err != nil && first == nil {
			first = err
		}
		f.onDeallocate(0, ch.span)
	}
	f.chunks = nil
	f.freeSlots = queue.New()
	return first
}

var (
	_ api.AllocationStrategy = (*Fixed)(nil)
	_ api.ResourceHolder     = (*Fixed)(nil)
)
