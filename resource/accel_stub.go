//go:build !accel
// +build !accel

// File: resource/accel_stub.go
// Author: momentics <momentics@gmail.com>

package resource

import "github.com/momentics/hioload-mem/api"

func accelResources() []api.MemoryResource {
	return nil
}
