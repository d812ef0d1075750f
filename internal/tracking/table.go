// File: internal/tracking/table.go
// Package tracking
// Author: momentics <momentics@gmail.com>
//
// Sharded, thread-safe pointer-to-allocation-record table.

package tracking

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
)

// Record ties a live pointer to its originally requested size and the
// strategy that owns it. At most one live record exists per pointer
// value; this table is the only place pointer identity is trusted,
// which is also what detects double-free and foreign-pointer misuse.
type Record struct {
	Ptr   unsafe.Pointer
	Size  int64
	Owner api.AllocationStrategy
}

// Table implements sharded storage for allocation records. Lookups
// race freely with registrations on other shards; a single shard is
// serialized by its own RWMutex.
type Table struct {
	shards []*tableShard
	mask   uint64
}

type tableShard struct {
	mu      sync.RWMutex
	records map[uintptr]*Record
}

// NewTable constructs a sharded table with shardCount shards.
func NewTable(shardCount int) *Table {
	if shardCount <= 0 {
		shardCount = 16
	}
	// find power-of-two shards for bitmasking
	m := nextPowerOfTwo(uint32(shardCount))
	shards := make([]*tableShard, m)
	for i := range shards {
		shards[i] = &tableShard{records: make(map[uintptr]*Record)}
	}
	return &Table{shards: shards, mask: uint64(m - 1)}
}

// shard picks the correct shard for a pointer value.
func (t *Table) shard(p uintptr) *tableShard {
	return t.shards[mix(uint64(p))&t.mask]
}

// Register inserts a record for ptr. A pointer must never be handed
// out while its previous record is still live, so an existing record
// is reported as internal corruption.
func (t *Table) Register(ptr unsafe.Pointer, size int64, owner api.AllocationStrategy) error {
	sh := t.shard(uintptr(ptr))
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.records[uintptr(ptr)]; ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "pointer already registered").
			WithContext("ptr", uintptr(ptr)).
			WithContext("allocator", owner.Name())
	}
	sh.records[uintptr(ptr)] = &Record{Ptr: ptr, Size: size, Owner: owner}
	return nil
}

// Reassign transfers ownership of a live record to a wrapping
// strategy, keeping the recorded size. Decorators use this so that
// pointer-only routing reaches the outermost wrapper.
func (t *Table) Reassign(ptr unsafe.Pointer, owner api.AllocationStrategy) error {
	sh := t.shard(uintptr(ptr))
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[uintptr(ptr)]
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "no live allocation for pointer").
			WithContext("ptr", uintptr(ptr))
	}
	rec.Owner = owner
	return nil
}

// Deregister removes and returns the record for ptr. Fails with
// ErrInvalidPointer when no record is live, which is how a double
// deallocation surfaces.
func (t *Table) Deregister(ptr unsafe.Pointer) (Record, error) {
	sh := t.shard(uintptr(ptr))
	sh.mu.Lock()
	defer sh.mu.Unlock()
	rec, ok := sh.records[uintptr(ptr)]
	if !ok {
		return Record{}, api.Errorf(api.ErrCodeInvalidPointer, "no live allocation for pointer").
			WithContext("ptr", uintptr(ptr))
	}
	delete(sh.records, uintptr(ptr))
	return *rec, nil
}

// Lookup fetches a copy of the record for ptr if one is live.
func (t *Table) Lookup(ptr unsafe.Pointer) (Record, bool) {
	sh := t.shard(uintptr(ptr))
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	rec, ok := sh.records[uintptr(ptr)]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len reports the number of live records across all shards.
func (t *Table) Len() int {
	n := 0
	for _, sh := range t.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}

// Range applies fn to a copy of every live record.
func (t *Table) Range(fn func(Record)) {
	for _, sh := range t.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			fn(*rec)
		}
		sh.mu.RUnlock()
	}
}

// mix spreads pointer bits across shards; pointers share low-bit
// alignment so a plain mask would collide.
func mix(v uint64) uint64 {
	v ^= v >> 33
	v *= 0x9e3779b97f4a7c15
	return v >> 17
}

// nextPowerOfTwo returns the next power-of-two >= v.
func nextPowerOfTwo(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
