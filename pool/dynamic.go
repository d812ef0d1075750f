// File: pool/dynamic.go
// Package pool general-purpose free-list strategy.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"unsafe"

	"github.com/google/btree"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/logutil"
	"github.com/momentics/hioload-mem/internal/tracking"
	"go.uber.org/zap"
)

// Dynamic is the general-purpose sub-allocator: it reserves coarse
// blocks from the underlying resource on demand and carves caller
// regions out of them. Free regions are indexed by (size, address) in
// a btree for best-fit search; physical neighbors within one block are
// doubly linked so address-adjacent free regions merge on deallocate.
// Reserved blocks are never returned to the resource while the
// strategy is alive.
type Dynamic struct {
	name  string
	res   api.MemoryResource
	table *tracking.Table
	accounting

	initialMin    int64
	subsequentMin int64
	grown         bool

	freeBySize *btree.BTree
	used       map[uintptr]*region
	blocks     []unsafe.Pointer
	regions    *SyncPool[*region]
}

// region is one contiguous span within a reserved block, either free
// or handed out. prev/next chain physical neighbors inside one block;
// regions of different blocks are never linked, which is what keeps
// coalescing from crossing reservation boundaries.
type region struct {
	ptr  uintptr
	size int64
	req  int64
	free bool
	prev *region
	next *region
}

// freeItem orders free regions by size, ties broken by lowest
// address, so the btree's first fit is the best fit.
type freeItem struct {
	r *region
}

func (i freeItem) Less(than btree.Item) bool {
	o := than.(freeItem)
	if i.r.size != o.r.size {
		return i.r.size < o.r.size
	}
	return i.r.ptr < o.r.ptr
}

const freeIndexDegree = 8

// NewDynamic builds a dynamic pool over res. The first reservation is
// at least the configured initial minimum, every later one at least
// the subsequent minimum.
func NewDynamic(name string, res api.MemoryResource, table *tracking.Table, opts ...DynamicOption) (*Dynamic, error) {
	cfg := dynamicConfig{
		initialMin:    DefaultInitialMinSize,
		subsequentMin: DefaultSubsequentMinSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.initialMin <= 0 || cfg.subsequentMin <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest,
			"minimum reservation sizes must be positive, got %d/%d", cfg.initialMin, cfg.subsequentMin).
			WithContext("allocator", name)
	}
	return &Dynamic{
		name:          name,
		res:           res,
		table:         table,
		initialMin:    cfg.initialMin,
		subsequentMin: cfg.subsequentMin,
		freeBySize:    btree.New(freeIndexDegree),
		used:          make(map[uintptr]*region),
		regions: NewSyncPool(
			func() *region { return new(region) },
			func(r *region) *region { *r = region{}; return r },
		),
	}, nil
}

func (d *Dynamic) Allocate(bytes int64) (unsafe.Pointer, error) {
	if bytes <= 0 {
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocation size must be positive, got %d", bytes).
			WithContext("allocator", d.name)
	}

	var grownBytes int64
	r := d.bestFit(bytes)
	if r == nil {
		blockSize := bytes
		min := d.subsequentMin
		if !d.grown {
			min = d.initialMin
		}
		if blockSize < min {
			blockSize = min
		}
		base, err := d.res.Allocate(blockSize)
		if err != nil {
			return nil, err
		}
		r = d.regions.Get()
		r.ptr = uintptr(base)
		r.size = blockSize
		grownBytes = blockSize
		logutil.Debug("dynamic pool grew",
			zap.String("allocator", d.name),
			zap.Int64("block_bytes", blockSize),
			zap.Int64("requested", bytes))
	}

	ptr := unsafe.Pointer(r.ptr)
	if err := d.table.Register(ptr, bytes, d); err != nil {
		// Corrupted tracking state; undo so counters stay untouched.
		if grownBytes > 0 {
			_ = d.res.Deallocate(ptr)
			d.regions.Put(r)
		} else {
			r.free = true
			d.freeBySize.ReplaceOrInsert(freeItem{r})
		}
		return nil, err
	}
	if grownBytes > 0 {
		d.grown = true
		d.blocks = append(d.blocks, unsafe.Pointer(r.ptr))
	}

	// Carve the request off the front, the remainder stays free.
	if r.size > bytes {
		rem := d.regions.Get()
		rem.ptr = r.ptr + uintptr(bytes)
		rem.size = r.size - bytes
		rem.free = true
		rem.prev = r
		rem.next = r.next
		if r.next != nil {
			r.next.prev = rem
		}
		r.next = rem
		r.size = bytes
		d.freeBySize.ReplaceOrInsert(freeItem{rem})
	}
	r.free = false
	r.req = bytes
	d.used[r.ptr] = r
	d.onAllocate(bytes, grownBytes)
	return ptr, nil
}

func (d *Dynamic) Deallocate(ptr unsafe.Pointer) error {
	r, ok := d.used[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer not allocated by %q", d.name).
			WithContext("ptr", uintptr(ptr))
	}
	if _, err := d.table.Deregister(ptr); err != nil {
		return err
	}
	delete(d.used, uintptr(ptr))
	req := r.req
	d.release(r)
	d.onDeallocate(req, 0)
	return nil
}

// bestFit removes and returns the smallest free region that fits
// bytes, lowest address among equals, or nil when none fits.
func (d *Dynamic) bestFit(bytes int64) *region {
	var found *region
	pivot := freeItem{r: &region{size: bytes}}
	d.freeBySize.AscendGreaterOrEqual(pivot, func(it btree.Item) bool {
		found = it.(freeItem).r
		return false
	})
	if found == nil {
		return nil
	}
	d.freeBySize.Delete(freeItem{found})
	return found
}

// release marks r free and merges it with any free physical neighbor,
// countering fragmentation. The merged region goes back into the size
// index; swallowed descriptors are recycled.
func (d *Dynamic) release(r *region) {
	r.free = true
	r.req = 0
	if l := r.prev; l != nil && l.free {
		d.freeBySize.Delete(freeItem{l})
		l.size += r.size
		l.next = r.next
		if r.next != nil {
			r.next.prev = l
		}
		d.regions.Put(r)
		r = l
	}
	if n := r.next; n != nil && n.free {
		d.freeBySize.Delete(freeItem{n})
		r.size += n.size
		r.next = n.next
		if n.next != nil {
			n.next.prev = r
		}
		d.regions.Put(n)
	}
	d.freeBySize.ReplaceOrInsert(freeItem{r})
}

func (d *Dynamic) Name() string { return d.name }

// Resource exposes the underlying physical resource.
func (d *Dynamic) Resource() api.MemoryResource { return d.res }

// Release returns every reserved block to the underlying resource.
// Only the manager calls this, at teardown.
func (d *Dynamic) Release() error {
	var first error
	for _, base := range d.blocks {
		if err := d.res.Deallocate(base); err != nil && first == nil {
			first = err
		}
	}
	d.onDeallocate(0, d.actual)
	d.blocks = nil
	d.used = make(map[uintptr]*region)
	d.freeBySize = btree.New(freeIndexDegree)
	return first
}

// FreeRegions reports how many free regions the pool currently holds.
// Introspection only; a fully coalesced idle pool reports one region
// per reserved block.
func (d *Dynamic) FreeRegions() int {
	return d.freeBySize.Len()
}

var (
	_ api.AllocationStrategy = (*Dynamic)(nil)
	_ api.ResourceHolder     = (*Dynamic)(nil)
)
