// Package manager
// Author: momentics <momentics@gmail.com>
//
// The resource manager: a registry of named allocators over the
// physical memory resources, plus the pointer-to-record table that
// routes pointer-only Deallocate and Size calls to the owning
// strategy. Construct isolated instances with New for tests, or share
// the process-wide one from Default.
package manager
