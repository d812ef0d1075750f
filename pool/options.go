// File: pool/options.go
// Package pool defines functional options for strategy construction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "github.com/momentics/hioload-mem/api"

// Defaults applied when the corresponding option is omitted.
const (
	DefaultAlignment         = 16
	DefaultInitialMinSize    = 16 * 1024
	DefaultSubsequentMinSize = 256
	DefaultChunkSlots        = 64
)

// MonotonicOption customizes a Monotonic strategy.
type MonotonicOption func(*monotonicConfig)

type monotonicConfig struct {
	alignment int64
}

// WithAlignment sets the allocation alignment. Must be a power of two.
func WithAlignment(n int64) MonotonicOption {
	return func(c *monotonicConfig) {
		c.alignment = n
	}
}

// DynamicOption customizes a Dynamic strategy.
type DynamicOption func(*dynamicConfig)

type dynamicConfig struct {
	initialMin    int64
	subsequentMin int64
}

// WithInitialMinSize sets the size of the first reservation.
func WithInitialMinSize(n int64) DynamicOption {
	return func(c *dynamicConfig) {
		c.initialMin = n
	}
}

// WithSubsequentMinSize sets the minimum size of every later
// reservation.
func WithSubsequentMinSize(n int64) DynamicOption {
	return func(c *dynamicConfig) {
		c.subsequentMin = n
	}
}

// FixedOption customizes a Fixed strategy.
type FixedOption func(*fixedConfig)

type fixedConfig struct {
	chunkSlots uint32
}

// WithChunkSlots overrides the number of slots reserved per growth
// chunk.
func WithChunkSlots(n uint32) FixedOption {
	return func(c *fixedConfig) {
		c.chunkSlots = n
	}
}

// AdvisorOption customizes an Advisor decorator.
type AdvisorOption func(*advisorConfig)

type advisorConfig struct {
	device int
	op     api.AdviceOp
}

// WithDeviceID targets the advice at a specific device ordinal.
// api.CPUDeviceID names the host processor.
func WithDeviceID(device int) AdvisorOption {
	return func(c *advisorConfig) {
		c.device = device
	}
}

// WithAdviceOp substitutes the advice operation resolved from the kind
// name. Primarily a seam for tests and embedders with platform advice
// capabilities of their own.
func WithAdviceOp(op api.AdviceOp) AdvisorOption {
	return func(c *advisorConfig) {
		c.op = op
	}
}
