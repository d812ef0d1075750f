//go:build !linux
// +build !linux

// File: internal/advice/advice_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub advice application for platforms without madvise.

package advice

import "unsafe"

func platformApply(string, unsafe.Pointer, int64, int) error {
	return nil
}
