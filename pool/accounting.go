// File: pool/accounting.go
// Package pool shared accounting counters.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// accounting carries the three counters every strategy reports.
// Plain fields: the owning strategy is single-threaded by contract and
// mutates them only after an operation has succeeded.
type accounting struct {
	current int64
	high    int64
	actual  int64
}

// onAllocate records outstanding bytes handed to the caller and any
// bytes newly reserved from the underlying resource.
func (a *accounting) onAllocate(outstanding, reserved int64) {
	a.current += outstanding
	if a.current > a.high {
		a.high = a.current
	}
	a.actual += reserved
}

// onDeallocate records outstanding bytes returned by the caller and any
// reserved bytes explicitly released back to the resource.
func (a *accounting) onDeallocate(outstanding, released int64) {
	a.current -= outstanding
	a.actual -= released
}

// CurrentSize reports bytes currently outstanding to callers.
func (a *accounting) CurrentSize() int64 { return a.current }

// HighWatermark reports the peak of CurrentSize.
func (a *accounting) HighWatermark() int64 { return a.high }

// ActualSize reports bytes reserved from the underlying resource.
func (a *accounting) ActualSize() int64 { return a.actual }
