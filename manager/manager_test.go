// File: manager/manager_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package manager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/fake"
	"github.com/momentics/hioload-mem/pool"
)

func TestManagerBuiltins(t *testing.T) {
	m := New()
	defer m.Close()

	require.True(t, m.HasResource(api.ResourceHost))
	require.True(t, m.IsAllocator(api.ResourceHost))
	require.Contains(t, m.Resources(), api.ResourceHost)

	host, err := m.Allocator(api.ResourceHost)
	require.NoError(t, err)
	require.Equal(t, api.ResourceHost, host.Name())

	_, err = m.Allocator("NO_SUCH")
	require.ErrorIs(t, err, api.ErrUnknownAllocator)
	require.False(t, m.IsAllocator("NO_SUCH"))
}

func TestManagerNameCollision(t *testing.T) {
	m := New()
	defer m.Close()

	a, err := m.MakeDynamic("scratch", api.ResourceHost)
	require.NoError(t, err)

	_, err = m.MakeDynamic("scratch", api.ResourceHost)
	require.ErrorIs(t, err, api.ErrNameCollision)
	_, err = m.MakeMonotonic(api.ResourceHost, api.ResourceHost, 1024)
	require.ErrorIs(t, err, api.ErrNameCollision)

	// The losing registration left the original binding untouched.
	got, err := m.Allocator("scratch")
	require.NoError(t, err)
	require.Same(t, a, got)
}

func TestManagerPointerRouting(t *testing.T) {
	m := New()
	defer m.Close()

	a, err := m.MakeDynamic("scratch", api.ResourceHost,
		pool.WithInitialMinSize(4096))
	require.NoError(t, err)

	p, err := a.Allocate(100)
	require.NoError(t, err)
	require.Equal(t, 1, m.Live())

	// Introspection and release need only the pointer.
	n, err := m.SizeOf(p)
	require.NoError(t, err)
	require.Equal(t, int64(100), n)

	require.NoError(t, m.Deallocate(p))
	require.Equal(t, 0, m.Live())

	err = m.Deallocate(p)
	require.ErrorIs(t, err, api.ErrInvalidPointer)
	_, err = m.SizeOf(p)
	require.ErrorIs(t, err, api.ErrInvalidPointer)
}

func TestManagerFacadeGuardsForeignPointers(t *testing.T) {
	m := New()
	defer m.Close()

	a, err := m.MakeDynamic("one", api.ResourceHost)
	require.NoError(t, err)
	b, err := m.MakeDynamic("two", api.ResourceHost)
	require.NoError(t, err)

	p, err := a.Allocate(64)
	require.NoError(t, err)

	// A pointer from another pool fails in the other pool's facade.
	err = b.Deallocate(p)
	require.ErrorIs(t, err, api.ErrInvalidPointer)
	require.NoError(t, a.Deallocate(p))
}

func TestMakeFixedFor(t *testing.T) {
	m := New()
	defer m.Close()

	type record struct {
		id   uint64
		data [56]byte
	}
	a, err := MakeFixedFor[record](m, "records", api.ResourceHost)
	require.NoError(t, err)

	p, err := a.Allocate(1)
	require.NoError(t, err)
	n, err := a.Size(p)
	require.NoError(t, err)
	require.Equal(t, int64(64), n)
	require.NoError(t, a.Deallocate(p))
}

func TestManagerStacking(t *testing.T) {
	m := New()
	defer m.Close()

	_, err := m.MakeDynamic("base", api.ResourceHost,
		pool.WithInitialMinSize(8192))
	require.NoError(t, err)
	safe, err := m.MakeThreadSafe("base_mt", "base")
	require.NoError(t, err)

	// A pool built over an allocator stack reserves from the stack's
	// bottom resource.
	slab, err := m.MakeFixed("slots", "base_mt", 128)
	require.NoError(t, err)

	p, err := safe.Allocate(100)
	require.NoError(t, err)
	q, err := slab.Allocate(128)
	require.NoError(t, err)

	require.NoError(t, m.Deallocate(p))
	require.NoError(t, m.Deallocate(q))
	require.Equal(t, 0, m.Live())
}

func TestManagerAdvisor(t *testing.T) {
	m := New()
	defer m.Close()

	_, err := m.MakeDynamic("base", api.ResourceHost)
	require.NoError(t, err)

	_, err = m.MakeAdvisor("hinted", "base", "NOT_A_KIND")
	require.ErrorIs(t, err, api.ErrInvalidAdvice)
	require.False(t, m.IsAllocator("hinted"))

	op := fake.NewAdviceOp("READ_MOSTLY")
	hinted, err := m.MakeAdvisor("hinted", "base", "", pool.WithAdviceOp(op))
	require.NoError(t, err)

	p, err := hinted.Allocate(256)
	require.NoError(t, err)
	require.Len(t, op.Applied(), 1)
	require.NoError(t, m.Deallocate(p))
}

func TestManagerStats(t *testing.T) {
	m := New()
	defer m.Close()

	a, err := m.MakeDynamic("zz_pool", api.ResourceHost,
		pool.WithInitialMinSize(2048))
	require.NoError(t, err)
	p, err := a.Allocate(300)
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Deallocate(p)) }()

	stats := m.Stats()
	require.GreaterOrEqual(t, len(stats), 2)
	for i := 1; i < len(stats); i++ {
		require.LessOrEqual(t, stats[i-1].Name, stats[i].Name)
	}
	var found bool
	for _, s := range stats {
		if s.Name == "zz_pool" {
			found = true
			require.Equal(t, int64(300), s.CurrentSize)
			require.Equal(t, int64(300), s.HighWatermark)
			require.GreaterOrEqual(t, s.ActualSize, int64(2048))
		}
	}
	require.True(t, found)
}

func TestManagerConfigApply(t *testing.T) {
	m := New()
	defer m.Close()

	cfg, err := ParseConfig(`
[[allocator]]
name = "scratch"
kind = "dynamic"
base = "HOST"
initial_min_size = 4096
subsequent_min_size = 1024

[[allocator]]
name = "scratch_mt"
kind = "threadsafe"
base = "scratch"

[[allocator]]
name = "frames"
kind = "fixed"
base = "HOST"
slot_size = 256
chunk_slots = 8

[[allocator]]
name = "arena"
kind = "monotonic"
base = "HOST"
capacity = 65536
alignment = 64
`)
	require.NoError(t, err)
	require.NoError(t, m.Apply(cfg))

	for _, name := range []string{"scratch", "scratch_mt", "frames", "arena"} {
		require.True(t, m.IsAllocator(name), name)
	}

	a, err := m.Allocator("scratch_mt")
	require.NoError(t, err)
	p, err := a.Allocate(64)
	require.NoError(t, err)
	require.NoError(t, m.Deallocate(p))
}

func TestManagerConfigUnknownKind(t *testing.T) {
	m := New()
	defer m.Close()

	cfg, err := ParseConfig(`
[[allocator]]
name = "x"
kind = "mystery"
base = "HOST"
`)
	require.NoError(t, err)
	require.ErrorIs(t, m.Apply(cfg), api.ErrInvalidRequest)
}

func TestManagerWithResource(t *testing.T) {
	res := fake.NewResource("FAKE_DEV")
	m := New(WithResource(res))
	defer m.Close()

	require.True(t, m.HasResource("FAKE_DEV"))
	a, err := m.Allocator("FAKE_DEV")
	require.NoError(t, err)
	p, err := a.Allocate(128)
	require.NoError(t, err)
	require.NoError(t, a.Deallocate(p))
	require.Equal(t, int64(0), res.Outstanding())
}

func TestDefaultSingleton(t *testing.T) {
	require.Same(t, Default(), Default())
	require.True(t, Default().HasResource(api.ResourceHost))
}
