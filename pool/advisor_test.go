package pool_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-mem/api"
	"github.com/momentics/hioload-mem/fake"
	"github.com/momentics/hioload-mem/internal/tracking"
	"github.com/momentics/hioload-mem/pool"
)

func TestAdvisorUnknownKind(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	if _, err := pool.NewAdvisor("adv", inner, table, "BOGUS_ADVICE"); !errors.Is(err, api.ErrInvalidAdvice) {
		t.Fatalf("err = %v, want ErrInvalidAdvice", err)
	}
}

func TestAdvisorAppliesHint(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	op := fake.NewAdviceOp("PREFERRED_LOCATION")
	adv, err := pool.NewAdvisor("adv", inner, table, "",
		pool.WithAdviceOp(op), pool.WithDeviceID(3))
	if err != nil {
		t.Fatalf("NewAdvisor: %v", err)
	}

	p, err := adv.Allocate(256)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	apps := op.Applied()
	if len(apps) != 1 {
		t.Fatalf("Applied = %d calls, want 1", len(apps))
	}
	if apps[0].Ptr != p || apps[0].Bytes != 256 || apps[0].Device != 3 {
		t.Errorf("recorded application = %+v", apps[0])
	}
	if adv.Advice() != "PREFERRED_LOCATION" {
		t.Errorf("Advice = %q", adv.Advice())
	}

	// The tracking record belongs to the wrapper, not the wrapped pool.
	rec, ok := table.Lookup(p)
	if !ok {
		t.Fatal("no record for live allocation")
	}
	if rec.Owner != api.AllocationStrategy(adv) {
		t.Error("record owner is not the advisor")
	}
	if adv.CurrentSize() != 256 {
		t.Errorf("CurrentSize = %d, want 256", adv.CurrentSize())
	}
	if adv.ActualSize() != inner.ActualSize() {
		t.Errorf("ActualSize = %d, want inner's %d", adv.ActualSize(), inner.ActualSize())
	}

	if err := adv.Deallocate(p); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	if adv.CurrentSize() != 0 {
		t.Errorf("CurrentSize after free = %d, want 0", adv.CurrentSize())
	}
	if inner.CurrentSize() != 0 {
		t.Errorf("inner CurrentSize after free = %d, want 0", inner.CurrentSize())
	}
}

func TestAdvisorForeignPointer(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	op := fake.NewAdviceOp("READ_MOSTLY")
	adv, err := pool.NewAdvisor("adv", inner, table, "", pool.WithAdviceOp(op))
	if err != nil {
		t.Fatalf("NewAdvisor: %v", err)
	}

	// Allocated straight from the wrapped pool: the record belongs to
	// the pool, and the advisor must refuse to release it.
	p, err := inner.Allocate(256)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := adv.Deallocate(p); !errors.Is(err, api.ErrInvalidPointer) {
		t.Fatalf("foreign pointer err = %v, want ErrInvalidPointer", err)
	}
	if adv.CurrentSize() != 0 {
		t.Errorf("foreign pointer mutated CurrentSize: %d", adv.CurrentSize())
	}
	if err := inner.Deallocate(p); err != nil {
		t.Fatalf("owner Deallocate: %v", err)
	}
}

func TestAdvisorUnderThreadSafe(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	op := fake.NewAdviceOp("READ_MOSTLY")
	adv, err := pool.NewAdvisor("adv", inner, table, "", pool.WithAdviceOp(op))
	if err != nil {
		t.Fatalf("NewAdvisor: %v", err)
	}
	ts := pool.NewThreadSafe("adv_mt", adv, table)

	// The outer wrapper owns the record, but the advisor must still
	// recognize its own allocation when the release passes through.
	p, err := ts.Allocate(128)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if err := ts.Deallocate(p); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	if adv.CurrentSize() != 0 || inner.CurrentSize() != 0 {
		t.Errorf("counters after drain: adv=%d inner=%d",
			adv.CurrentSize(), inner.CurrentSize())
	}
	if table.Len() != 0 {
		t.Errorf("%d live records after drain", table.Len())
	}
}

func TestAdvisorApplyFailureRollsBack(t *testing.T) {
	res := fake.NewResource("HOST")
	table := tracking.NewTable(16)
	inner, err := pool.NewDynamic("dyn", res, table)
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	op := fake.NewAdviceOp("READ_MOSTLY")
	op.Err = api.Errorf(api.ErrCodeInvalidAdvice, "injected")
	adv, err := pool.NewAdvisor("adv", inner, table, "", pool.WithAdviceOp(op))
	if err != nil {
		t.Fatalf("NewAdvisor: %v", err)
	}

	if _, err := adv.Allocate(128); err == nil {
		t.Fatal("expected Apply failure to surface")
	}
	if adv.CurrentSize() != 0 || inner.CurrentSize() != 0 {
		t.Errorf("failed allocate leaked accounting: adv=%d inner=%d",
			adv.CurrentSize(), inner.CurrentSize())
	}
	if table.Len() != 0 {
		t.Errorf("failed allocate left %d live records", table.Len())
	}
}
