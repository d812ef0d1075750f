//go:build linux
// +build linux

// File: internal/advice/advice_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux advice application via madvise on the target region.

package advice

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// platformApply maps advice kinds onto madvise where the kernel offers
// an equivalent. Placement kinds (PREFERRED_LOCATION, ACCESSED_BY)
// have no host-memory analogue and validate only.
func platformApply(kind string, ptr unsafe.Pointer, bytes int64, _ int) error {
	switch kind {
	case ReadMostly:
		// madvise wants page-aligned addresses; advise only the
		// page-aligned span fully inside the region.
		page := uintptr(os.Getpagesize())
		start := (uintptr(ptr) + page - 1) &^ (page - 1)
		end := (uintptr(ptr) + uintptr(bytes)) &^ (page - 1)
		if end <= start {
			return nil
		}
		span := unsafe.Slice((*byte)(unsafe.Pointer(start)), end-start)
		if err := unix.Madvise(span, unix.MADV_WILLNEED); err != nil {
			return err
		}
	}
	return nil
}
