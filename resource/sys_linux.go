//go:build linux
// +build linux

// File: resource/sys_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux raw page reservation via anonymous mmap.

package resource

import "golang.org/x/sys/unix"

func sysAlloc(bytes int64) ([]byte, error) {
	return unix.Mmap(-1, 0, int(bytes),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
}

func sysFree(block []byte) error {
	return unix.Munmap(block)
}

func sysPin(block []byte) error {
	return unix.Mlock(block)
}
