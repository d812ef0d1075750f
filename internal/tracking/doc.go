// Package tracking
// Author: momentics <momentics@gmail.com>
//
// Process-internal registry of live allocations. Every strategy records
// (pointer -> size, owner) here on successful allocation and removes the
// record on deallocation, so that pointer-only Deallocate and Size calls
// can be routed without the caller naming a strategy.
package tracking
