package pool_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/panjf2000/ants/v2"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/fake"
	"github.com/momentics/hioload-mem/internal/tracking"
	"github.com/momentics/hioload-mem/pool"
)

func TestThreadSafeRecordOwnership(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	ts := pool.NewThreadSafe("safe", inner, table)

	p, err := ts.Allocate(64)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	rec, ok := table.Lookup(p)
	if !ok {
		t.Fatal("no record for live allocation")
	}
	if rec.Owner != api.AllocationStrategy(ts) {
		t.Error("record owner is not the thread-safe wrapper")
	}
	if err := ts.Deallocate(p); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
}

func TestThreadSafeConcurrentBursts(t *testing.T) {
	const (
		workers   = 8
		perWorker = 500
	)

	res := fake.NewResource("HOST")
	table := tracking.NewTable(64)
	inner, err := pool.NewDynamic("dyn", res, table,
		pool.WithInitialMinSize(4096), pool.WithSubsequentMinSize(1024))
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	ts := pool.NewThreadSafe("safe", inner, table)

	exec, err := ants.NewPool(workers)
	if err != nil {
		t.Fatalf("ants.NewPool: %v", err)
	}
	defer exec.Release()

	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		seed := w
		if err := exec.Submit(func() {
			defer wg.Done()
			sizes := []int64{16, 48, 64, 33}
			var held []unsafe.Pointer
			for i := 0; i < perWorker; i++ {
				p, err := ts.Allocate(sizes[(seed+i)%len(sizes)])
				if err != nil {
					errCh <- err
					return
				}
				held = append(held, p)
				// Keep a small working set, freeing oldest-first.
				if len(held) > 4 {
					if err := ts.Deallocate(held[0]); err != nil {
						errCh <- err
						return
					}
					held = held[1:]
				}
			}
			for _, p := range held {
				if err := ts.Deallocate(p); err != nil {
					errCh <- err
					return
				}
			}
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("worker failed: %v", err)
	}

	if got := ts.CurrentSize(); got != 0 {
		t.Errorf("CurrentSize after drain = %d, want 0", got)
	}
	if got := table.Len(); got != 0 {
		t.Errorf("%d live records after drain", got)
	}
	// At most workers*4 regions of at most 64 bytes were ever held,
	// plus one in-flight allocation per worker.
	if hw := ts.HighWatermark(); hw > int64(workers*5*64) {
		t.Errorf("HighWatermark = %d, exceeds possible peak", hw)
	}
	if ts.ActualSize() < ts.HighWatermark() {
		t.Errorf("ActualSize %d below HighWatermark %d", ts.ActualSize(), ts.HighWatermark())
	}
}
