package stores

import (
	"context"
	"testing"
	"time"

	"github.com/rentora/ability"
)

func TestMemoryRecordStorePutLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRecordStore()
	s.Put("unit-1", &ability.UnitRecord{ID: "unit-1", OrganizationID: "org-1"})

	rec, err := s.LoadRecord(ctx, ability.RecordRef{Type: ability.SubjectUnit, ID: "unit-1"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec == nil || rec.(*ability.UnitRecord).OrganizationID != "org-1" {
		t.Fatalf("unexpected record %+v", rec)
	}

	// same id under a different type is a different ref
	if rec, _ := s.LoadRecord(ctx, ability.RecordRef{Type: ability.SubjectLease, ID: "unit-1"}); rec != nil {
		t.Fatalf("expected type-tagged miss, got %+v", rec)
	}

	s.Delete(ability.RecordRef{Type: ability.SubjectUnit, ID: "unit-1"})
	if rec, _ := s.LoadRecord(ctx, ability.RecordRef{Type: ability.SubjectUnit, ID: "unit-1"}); rec != nil {
		t.Fatalf("expected delete to remove record")
	}
}

func TestMemoryRecordStoreHonorsContext(t *testing.T) {
	s := NewMemoryRecordStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.LoadRecord(ctx, ability.RecordRef{Type: ability.SubjectUnit, ID: "x"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestMemorySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	u := &ability.User{ID: "u1", UserType: ability.UserTypeTenant, OrganizationID: "org-1", PartyID: "party-1"}
	if err := s.Save(ctx, "tok-1", u, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Resolve(ctx, "tok-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got == nil || got.ID != "u1" {
		t.Fatalf("unexpected user %+v", got)
	}

	if got, _ := s.Resolve(ctx, "tok-unknown"); got != nil {
		t.Fatalf("expected unknown token to resolve nil")
	}

	if err := s.Revoke(ctx, "tok-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if got, _ := s.Resolve(ctx, "tok-1"); got != nil {
		t.Fatalf("expected revoked token to resolve nil")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	u := &ability.User{ID: "u1", UserType: ability.UserTypeTenant, OrganizationID: "org-1"}
	if err := s.Save(ctx, "tok-1", u, time.Millisecond); err != nil {
		t.Fatalf("save: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if got, _ := s.Resolve(ctx, "tok-1"); got != nil {
		t.Fatalf("expected expired token to resolve nil")
	}
}
