package stores

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rentora/ability"
)

// countingSource wraps MemoryRecordStore and counts backing loads.
type countingSource struct {
	inner *MemoryRecordStore
	loads int64
}

func (c *countingSource) LoadRecord(ctx context.Context, ref ability.RecordRef) (ability.Record, error) {
	atomic.AddInt64(&c.loads, 1)
	return c.inner.LoadRecord(ctx, ref)
}

func TestCachedRecordSourceReadThrough(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{inner: NewMemoryRecordStore()}
	src.inner.Put("unit-1", &ability.UnitRecord{ID: "unit-1", OrganizationID: "org-1"})

	cached, err := NewCachedRecordSource(src, ability.CacheConfig{RecordTTL: 60_000, RecordMaxEntries: 100})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer cached.Close()

	ref := ability.RecordRef{Type: ability.SubjectUnit, ID: "unit-1"}
	rec, err := cached.LoadRecord(ctx, ref)
	if err != nil || rec == nil {
		t.Fatalf("first load: rec=%v err=%v", rec, err)
	}
	cached.Wait()

	if _, err := cached.LoadRecord(ctx, ref); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if n := atomic.LoadInt64(&src.loads); n != 1 {
		t.Fatalf("expected one backing load, got %d", n)
	}
}

func TestCachedRecordSourceNegativeCaching(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{inner: NewMemoryRecordStore()}

	cached, err := NewCachedRecordSource(src, ability.CacheConfig{RecordTTL: 60_000, RecordMaxEntries: 100})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer cached.Close()

	ref := ability.RecordRef{Type: ability.SubjectLease, ID: "ghost"}
	if rec, err := cached.LoadRecord(ctx, ref); rec != nil || err != nil {
		t.Fatalf("expected nil, nil for missing record, got %v %v", rec, err)
	}
	cached.Wait()

	if rec, err := cached.LoadRecord(ctx, ref); rec != nil || err != nil {
		t.Fatalf("expected cached miss to stay nil, nil, got %v %v", rec, err)
	}
	if n := atomic.LoadInt64(&src.loads); n != 1 {
		t.Fatalf("expected the miss to be cached, got %d backing loads", n)
	}
}

func TestCachedRecordSourceInvalidate(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{inner: NewMemoryRecordStore()}
	src.inner.Put("unit-1", &ability.UnitRecord{ID: "unit-1", MaintenanceStatus: "ok"})

	cached, err := NewCachedRecordSource(src, ability.CacheConfig{RecordTTL: 60_000, RecordMaxEntries: 100})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	defer cached.Close()

	ref := ability.RecordRef{Type: ability.SubjectUnit, ID: "unit-1"}
	if _, err := cached.LoadRecord(ctx, ref); err != nil {
		t.Fatalf("load: %v", err)
	}
	cached.Wait()

	src.inner.Put("unit-1", &ability.UnitRecord{ID: "unit-1", MaintenanceStatus: "needs-repair"})
	cached.Invalidate(ref)

	rec, err := cached.LoadRecord(ctx, ref)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if rec.(*ability.UnitRecord).MaintenanceStatus != "needs-repair" {
		t.Fatalf("expected invalidation to force a fresh load, got %+v", rec)
	}
}

func TestCachedRecordSourceDefaults(t *testing.T) {
	cached, err := NewCachedRecordSource(NewMemoryRecordStore(), ability.CacheConfig{})
	if err != nil {
		t.Fatalf("expected zero config to fall back to defaults, got %v", err)
	}
	cached.Close()
}
