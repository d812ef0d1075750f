// File: manager/config.go
// Package manager declarative allocator configuration.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package manager

import (
	"github.com/BurntSushi/toml"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/pool"
)

// Config describes a stack of allocators to register, in order, so
// later entries may layer over earlier ones:
//
//	[[allocator]]
//	name = "scratch"
//	kind = "dynamic"
//	base = "HOST"
//	initial_min_size = 1024
//	subsequent_min_size = 512
//
//	[[allocator]]
//	name = "scratch_mt"
//	kind = "threadsafe"
//	base = "scratch"
type Config struct {
	Allocators []AllocatorConfig `toml:"allocator"`
}

// AllocatorConfig is one registry entry. Fields beyond name/kind/base
// apply only to the kinds that use them.
type AllocatorConfig struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`
	Base string `toml:"base"`

	// monotonic
	Capacity  int64 `toml:"capacity"`
	Alignment int64 `toml:"alignment"`

	// dynamic
	InitialMinSize    int64 `toml:"initial_min_size"`
	SubsequentMinSize int64 `toml:"subsequent_min_size"`

	// fixed
	SlotSize   int64  `toml:"slot_size"`
	ChunkSlots uint32 `toml:"chunk_slots"`

	// advisor
	Advice     string `toml:"advice"`
	AccessedBy string `toml:"accessed_by"`
}

// LoadConfig reads a TOML allocator configuration from path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseConfig reads a TOML allocator configuration from a string.
func ParseConfig(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Apply registers every configured allocator in order. The first
// failure stops application; entries already registered stay.
func (m *Manager) Apply(cfg *Config) error {
	for _, ac := range cfg.Allocators {
		if err := m.applyOne(ac); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) applyOne(ac AllocatorConfig) error {
	switch ac.Kind {
	case "dynamic":
		var opts []pool.DynamicOption
		if ac.InitialMinSize > 0 {
			opts = append(opts, pool.WithInitialMinSize(ac.InitialMinSize))
		}
		if ac.SubsequentMinSize > 0 {
			opts = append(opts, pool.WithSubsequentMinSize(ac.SubsequentMinSize))
		}
		_, err := m.MakeDynamic(ac.Name, ac.Base, opts...)
		return err
	case "monotonic":
		var opts []pool.MonotonicOption
		if ac.Alignment > 0 {
			opts = append(opts, pool.WithAlignment(ac.Alignment))
		}
		_, err := m.MakeMonotonic(ac.Name, ac.Base, ac.Capacity, opts...)
		return err
	case "fixed":
		var opts []pool.FixedOption
		if ac.ChunkSlots > 0 {
			opts = append(opts, pool.WithChunkSlots(ac.ChunkSlots))
		}
		_, err := m.MakeFixed(ac.Name, ac.Base, ac.SlotSize, opts...)
		return err
	case "advisor":
		var opts []pool.AdvisorOption
		if ac.AccessedBy == api.ResourceHost {
			opts = append(opts, pool.WithDeviceID(api.CPUDeviceID))
		}
		_, err := m.MakeAdvisor(ac.Name, ac.Base, ac.Advice, opts...)
		return err
	case "threadsafe":
		_, err := m.MakeThreadSafe(ac.Name, ac.Base)
		return err
	default:
		return api.Errorf(api.ErrCodeInvalidRequest, "unknown allocator kind %q", ac.Kind).
			WithContext("allocator", ac.Name)
	}
}
