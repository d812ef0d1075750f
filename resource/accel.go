//go:build accel
// +build accel

// File: resource/accel.go
// Author: momentics <momentics@gmail.com>
//
// Emulated accelerator device memory, enabled with -tags accel. The
// device heap is host pages under a fixed byte budget so exhaustion
// behaves like a real device.

package resource

import "github.com/momentics/hioload-mem/api"

// deviceEmuCapacity bounds the emulated device heap.
const deviceEmuCapacity = 1 << 30

// NewDevice returns the emulated accelerator resource.
func NewDevice() api.MemoryResource {
	return &mappedResource{
		name:   api.ResourceDevice,
		limit:  deviceEmuCapacity,
		blocks: make(map[uintptr][]byte),
	}
}

func accelResources() []api.MemoryResource {
	return []api.MemoryResource{NewDevice()}
}
