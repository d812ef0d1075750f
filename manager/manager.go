// File: manager/manager.go
// Package manager implements the allocator registry.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package manager

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/internal/logutil"
	"github.com/momentics/hioload-mem/internal/tracking"
	"github.com/momentics/hioload-mem/pool"
	"github.com/momentics/hioload-mem/resource"
	"go.uber.org/zap"
)

const defaultTableShards = 64

// Manager owns one MemoryResource per physical kind, the name to
// strategy registry, and the allocation-record table. Registry entries
// are never evicted: a strategy outlives every Allocator handle bound
// to it while registered. The registry and the table carry their own
// locks, independent of any per-strategy serialization.
type Manager struct {
	mu         sync.RWMutex
	resources  map[string]api.MemoryResource
	allocators map[string]*Allocator
	table      *tracking.Table
}

// Option customizes manager construction.
type Option func(*Manager)

// WithResource registers an additional (or replacement) physical
// resource before the built-in ones are fronted by allocators.
func WithResource(res api.MemoryResource) Option {
	return func(m *Manager) {
		m.resources[res.Name()] = res
	}
}

// New constructs an isolated manager. Every physical resource this
// build supports is registered under its fixed name and fronted by a
// passthrough allocator of the same name.
func New(opts ...Option) *Manager {
	m := &Manager{
		resources:  make(map[string]api.MemoryResource),
		allocators: make(map[string]*Allocator),
		table:      tracking.NewTable(defaultTableShards),
	}
	for _, res := range resource.Builtin() {
		m.resources[res.Name()] = res
	}
	for _, opt := range opts {
		opt(m)
	}
	for name, res := range m.resources {
		m.allocators[name] = m.newHandle(name, pool.NewPassthrough(name, res, m.table))
		logutil.Info("memory resource registered", zap.String("resource", name))
	}
	return m
}

func (m *Manager) newHandle(name string, s api.AllocationStrategy) *Allocator {
	return &Allocator{name: name, strategy: s, mgr: m}
}

// Allocator returns the handle registered under name, failing with
// ErrUnknownAllocator when none is.
func (m *Manager) Allocator(name string) (*Allocator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.allocators[name]
	if !ok {
		return nil, api.Errorf(api.ErrCodeUnknownAllocator, "no allocator registered under %q", name)
	}
	return a, nil
}

// IsAllocator reports whether name is registered.
func (m *Manager) IsAllocator(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.allocators[name]
	return ok
}

// HasResource reports whether a physical resource of that kind exists
// in this build.
func (m *Manager) HasResource(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.resources[name]
	return ok
}

// Resources lists the registered physical resource names, sorted.
func (m *Manager) Resources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.resources))
	for name := range m.resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// checkNameLocked guards registration: a taken name fails without any
// side effect on the registry.
func (m *Manager) checkNameLocked(name string) error {
	if name == "" {
		return api.Errorf(api.ErrCodeInvalidRequest, "allocator name must not be empty")
	}
	if _, ok := m.allocators[name]; ok {
		return api.Errorf(api.ErrCodeNameCollision, "allocator %q already registered", name)
	}
	return nil
}

// resourceForLocked resolves the backing resource for a new pool:
// either a physical resource name or the name of an allocator whose
// stack bottoms out in one.
func (m *Manager) resourceForLocked(base string) (api.MemoryResource, error) {
	if res, ok := m.resources[base]; ok {
		return res, nil
	}
	if a, ok := m.allocators[base]; ok {
		if rh, ok := a.strategy.(api.ResourceHolder); ok {
			if res := rh.Resource(); res != nil {
				return res, nil
			}
		}
		return nil, api.Errorf(api.ErrCodeInvalidRequest, "allocator %q cannot back a pool", base)
	}
	return nil, api.Errorf(api.ErrCodeUnknownAllocator, "no allocator or resource registered under %q", base)
}

// strategyForLocked resolves the wrapped strategy for a new decorator.
func (m *Manager) strategyForLocked(base string) (api.AllocationStrategy, error) {
	a, ok := m.allocators[base]
	if !ok {
		return nil, api.Errorf(api.ErrCodeUnknownAllocator, "no allocator registered under %q", base)
	}
	return a.strategy, nil
}

func (m *Manager) installLocked(name string, s api.AllocationStrategy) *Allocator {
	a := m.newHandle(name, s)
	m.allocators[name] = a
	logutil.Info("allocator registered", zap.String("allocator", name))
	return a
}

// Register installs an externally constructed strategy under name.
// Fails with ErrNameCollision when the name is taken.
func (m *Manager) Register(name string, s api.AllocationStrategy) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	return m.installLocked(name, s), nil
}

// MakeDynamic registers a dynamic pool drawing from base, which names
// a physical resource or an existing allocator.
func (m *Manager) MakeDynamic(name, base string, opts ...pool.DynamicOption) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	res, err := m.resourceForLocked(base)
	if err != nil {
		return nil, err
	}
	d, err := pool.NewDynamic(name, res, m.table, opts...)
	if err != nil {
		return nil, err
	}
	return m.installLocked(name, d), nil
}

// MakeMonotonic registers a bump allocator over one reservation of
// capacity bytes from base.
func (m *Manager) MakeMonotonic(name, base string, capacity int64, opts ...pool.MonotonicOption) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	res, err := m.resourceForLocked(base)
	if err != nil {
		return nil, err
	}
	s, err := pool.NewMonotonic(name, res, m.table, capacity, opts...)
	if err != nil {
		return nil, err
	}
	return m.installLocked(name, s), nil
}

// MakeFixed registers a slab pool of slotSize-byte slots over base.
func (m *Manager) MakeFixed(name, base string, slotSize int64, opts ...pool.FixedOption) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	res, err := m.resourceForLocked(base)
	if err != nil {
		return nil, err
	}
	s, err := pool.NewFixed(name, res, m.table, slotSize, opts...)
	if err != nil {
		return nil, err
	}
	return m.installLocked(name, s), nil
}

// MakeFixedFor registers a slab pool sized for values of type T.
// A package-level function because Go methods cannot be generic.
func MakeFixedFor[T any](m *Manager, name, base string, opts ...pool.FixedOption) (*Allocator, error) {
	var zero T
	return m.MakeFixed(name, base, int64(unsafe.Sizeof(zero)), opts...)
}

// MakeAdvisor registers an advice decorator over the allocator named
// base. Fails with ErrInvalidAdvice for an unrecognized kind.
func (m *Manager) MakeAdvisor(name, base, kind string, opts ...pool.AdvisorOption) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	inner, err := m.strategyForLocked(base)
	if err != nil {
		return nil, err
	}
	s, err := pool.NewAdvisor(name, inner, m.table, kind, opts...)
	if err != nil {
		return nil, err
	}
	return m.installLocked(name, s), nil
}

// MakeThreadSafe registers a serializing decorator over the allocator
// named base.
func (m *Manager) MakeThreadSafe(name, base string) (*Allocator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkNameLocked(name); err != nil {
		return nil, err
	}
	inner, err := m.strategyForLocked(base)
	if err != nil {
		return nil, err
	}
	return m.installLocked(name, pool.NewThreadSafe(name, inner, m.table)), nil
}

// SizeOf reports the recorded byte count of a live allocation,
// whatever allocator produced it.
func (m *Manager) SizeOf(ptr unsafe.Pointer) (int64, error) {
	rec, ok := m.table.Lookup(ptr)
	if !ok {
		return 0, api.Errorf(api.ErrCodeInvalidPointer, "no live allocation for pointer").
			WithContext("ptr", uintptr(ptr))
	}
	return rec.Size, nil
}

// Deallocate routes a pointer-only deallocation to the strategy that
// owns the allocation record.
func (m *Manager) Deallocate(ptr unsafe.Pointer) error {
	rec, ok := m.table.Lookup(ptr)
	if !ok {
		return api.Errorf(api.ErrCodeInvalidPointer, "no live allocation for pointer").
			WithContext("ptr", uintptr(ptr))
	}
	return rec.Owner.Deallocate(ptr)
}

// Live reports the number of live allocation records.
func (m *Manager) Live() int {
	return m.table.Len()
}

// Stats snapshots the counters of every registered allocator, sorted
// by name.
func (m *Manager) Stats() []api.AllocatorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.AllocatorStats, 0, len(m.allocators))
	for _, a := range m.allocators {
		out = append(out, api.Snapshot(a.strategy))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Close tears the manager down at process exit: strategies release
// their reservations, then every resource drops whatever mappings
// remain. The manager must not be used afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for _, a := range m.allocators {
		if rel, ok := a.strategy.(interface{ Release() error }); ok {
			if err := rel.Release(); err != nil && first == nil {
				first = err
			}
		}
	}
	for _, res := range m.resources {
		if closer, ok := res.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
