//go:build !linux
// +build !linux

// File: resource/platform_stub.go
// Author: momentics <momentics@gmail.com>

package resource

import "github.com/momentics/hioload-mem/api"

func platformResources() []api.MemoryResource {
	return nil
}
