// File: api/stats.go
// Package api defines introspection types.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// AllocatorStats is a point-in-time snapshot of one strategy's
// accounting counters, as returned by manager.Manager.Stats.
type AllocatorStats struct {
	Name          string
	CurrentSize   int64
	HighWatermark int64
	ActualSize    int64
}

// Snapshot captures the counters of a strategy. The read is not
// serialized against concurrent mutation unless the strategy is
// thread-safe.
func Snapshot(s AllocationStrategy) AllocatorStats {
	return AllocatorStats{
		Name:          s.Name(),
		CurrentSize:   s.CurrentSize(),
		HighWatermark: s.HighWatermark(),
		ActualSize:    s.ActualSize(),
	}
}
