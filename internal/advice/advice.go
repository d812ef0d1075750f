// File: internal/advice/advice.go
// Package advice
// Author: momentics <momentics@gmail.com>
//
// Registry of recognized memory-advice kinds. Application is platform
// best-effort: kinds without a host analogue validate and no-op.

package advice

import (
	"unsafe"

	"github.com/momentics/hioload-mem/api"
)

// Recognized advice kinds.
const (
	ReadMostly        = "READ_MOSTLY"
	PreferredLocation = "PREFERRED_LOCATION"
	AccessedBy        = "ACCESSED_BY"
)

var kinds = []string{ReadMostly, PreferredLocation, AccessedBy}

// Kinds lists the recognized advice kinds.
func Kinds() []string {
	out := make([]string, len(kinds))
	copy(out, kinds)
	return out
}

// Find resolves a named advice kind to an operation, failing with
// ErrInvalidAdvice for anything unrecognized. Resolution happens at
// advisor construction so a bad kind never reaches the allocate path.
func Find(name string) (api.AdviceOp, error) {
	for _, k := range kinds {
		if k == name {
			return &op{name: name}, nil
		}
	}
	return nil, api.Errorf(api.ErrCodeInvalidAdvice, "unrecognized advice kind %q", name)
}

type op struct {
	name string
}

func (o *op) Name() string { return o.name }

func (o *op) Apply(ptr unsafe.Pointer, bytes int64, device int) error {
	if ptr == nil || bytes <= 0 {
		return api.Errorf(api.ErrCodeInvalidRequest, "advice target must be a live region")
	}
	return platformApply(o.name, ptr, bytes, device)
}

var _ api.AdviceOp = (*op)(nil)
