// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mem/api"
)

// Application is one recorded advice application.
type Application struct {
	Ptr    unsafe.Pointer
	Bytes  int64
	Device int
}

// AdviceOp records every Apply call instead of touching the platform.
type AdviceOp struct {
	name string

	mu      sync.Mutex
	applied []Application

	// Err, when set, is returned by every Apply.
	Err error
}

// NewAdviceOp returns a recording advice op with the given kind name.
func NewAdviceOp(name string) *AdviceOp {
	return &AdviceOp{name: name}
}

func (o *AdviceOp) Name() string { return o.name }

func (o *AdviceOp) Apply(ptr unsafe.Pointer, bytes int64, device int) error {
	if o.Err != nil {
		return o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied = append(o.applied, Application{Ptr: ptr, Bytes: bytes, Device: device})
	return nil
}

// Applied returns a copy of the recorded applications.
func (o *AdviceOp) Applied() []Application {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Application, len(o.applied))
	copy(out, o.applied)
	return out
}

var _ api.AdviceOp = (*AdviceOp)(nil)
