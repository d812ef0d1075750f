// Package resource
// Author: momentics <momentics@gmail.com>
//
// Concrete physical memory resources behind the api.MemoryResource
// capability. HOST is always available and backed by anonymous mmap on
// Linux (heap pages elsewhere). UM and PINNED are host-side renditions
// of unified and page-locked memory on Linux; DEVICE exists only when
// the module is built with the accel tag and is emulated over a fixed
// byte budget. Exactly one instance per kind is owned by the manager
// for process lifetime.
package resource
