// Package api
// Author: momentics <momentics@gmail.com>
//
// Abstract contracts for hioload-mem: the allocation-strategy interface,
// the raw memory-resource capability, the memory-advice capability, and
// the shared error taxonomy. All concrete implementations live in the
// pool, resource and manager packages; this package carries no state.
package api
