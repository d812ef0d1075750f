// File: manager/default.go
// Package manager process-wide default instance.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package manager

import "sync"

var (
	defaultOnce sync.Once
	defaultMgr  *Manager
)

// Default returns a process-wide Manager so unrelated components share
// allocators by name instead of fragmenting reservations. Lifetime is
// the process; tests should prefer isolated New instances.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultMgr = New()
	})
	return defaultMgr
}
