//go:build !linux
// +build !linux

// File: resource/sys_stub.go
// Author: momentics <momentics@gmail.com>
//
// Heap-backed reservations for platforms without mmap support here.
// The resource keeps a reference to every block, so base addresses
// stay valid until Deallocate.

package resource

func sysAlloc(bytes int64) ([]byte, error) {
	return make([]byte, bytes), nil
}

func sysFree([]byte) error {
	return nil
}

func sysPin([]byte) error {
	return nil
}
