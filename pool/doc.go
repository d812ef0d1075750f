// Package pool
// Author: momentics <momentics@gmail.com>
//
// Allocation strategies for hioload-mem: monotonic bump allocation,
// fixed-slot slab pooling, general free-list pooling with coalescing,
// plus the advice and thread-safety decorators. Every strategy turns a
// raw, coarse-grained memory resource into fast fine-grained allocation
// behind the api.AllocationStrategy contract.
//
// IMPORTANT: strategies are NOT goroutine-safe. Wrap an instance with
// ThreadSafe before sharing it across goroutines.
// See dynamic.go, fixed.go, monotonic.go for implementation details.
package pool
