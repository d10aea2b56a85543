package ability

import (
	"strings"
	"testing"
)

func TestDSLParseBasic(t *testing.T) {
	dsl := `
# guard config
version 2
cache record_ttl_ms=3000 record_max_entries=500

operation lease.read read:lease!
operation unit.maintenance update:unit#maintenanceStatus,notes
operation "PATCH /units/:id" update:unit!
operation property.list read:property
`
	cfg, err := NewDSLParser().Parse([]byte(dsl))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Version != 2 {
		t.Fatalf("expected version 2, got %d", cfg.Version)
	}
	if cfg.Cache.RecordTTL != 3000 || cfg.Cache.RecordMaxEntries != 500 {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if len(cfg.Operations) != 4 {
		t.Fatalf("expected 4 operations, got %d", len(cfg.Operations))
	}

	lease := cfg.Operations[0]
	if lease.ID != "lease.read" || len(lease.Checks) != 1 {
		t.Fatalf("unexpected operation %+v", lease)
	}
	if !lease.Checks[0].Record || lease.Checks[0].Action != "read" || lease.Checks[0].Subject != "lease" {
		t.Fatalf("unexpected check %+v", lease.Checks[0])
	}

	maint := cfg.Operations[1].Checks[0]
	if len(maint.Fields) != 2 || maint.Fields[0] != "maintenanceStatus" || maint.Fields[1] != "notes" {
		t.Fatalf("unexpected fields %v", maint.Fields)
	}

	if cfg.Operations[2].ID != "PATCH /units/:id" {
		t.Fatalf("expected quoted route id, got %q", cfg.Operations[2].ID)
	}
}

func TestDSLParseErrors(t *testing.T) {
	cases := []struct {
		name string
		dsl  string
		want string
	}{
		{"unknown directive", "grant lease.read read:lease", "unknown directive"},
		{"bad version", "version many", "bad version"},
		{"missing checks", "operation lease.read", "at least one check"},
		{"bad check", "operation lease.read readlease", "not action:subject"},
		{"empty fields", "operation op update:unit#", "lists no fields"},
		{"bad cache option", "cache record_ttl_ms=soon", "bad number"},
		{"unknown cache option", "cache decision_ttl=5", "unknown cache option"},
	}
	for _, tc := range cases {
		_, err := NewDSLParser().Parse([]byte(tc.dsl))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDSLErrorsCarryLineNumbers(t *testing.T) {
	dsl := "version 1\n\noperation lease.read read:lease\nbogus directive\n"
	_, err := NewDSLParser().Parse([]byte(dsl))
	if err == nil || !strings.Contains(err.Error(), "line 4") {
		t.Fatalf("expected line 4 in error, got %v", err)
	}
}

func TestDSLEncodeRoundTrip(t *testing.T) {
	cfg := NewConfigBuilder().
		Version(3).
		Operation("lease.read", RecordCheck(ActionRead, SubjectLease)).
		Operation("unit.maintenance", FieldsCheck(SubjectUnit, "maintenanceStatus", "notes")).
		Operation("PATCH /units/:id", RecordCheck(ActionUpdate, SubjectUnit)).
		Build()

	data, err := NewDSLEncoder().Encode(cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	back, err := NewDSLParser().Parse(data)
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, data)
	}
	if back.Version != cfg.Version {
		t.Fatalf("version mismatch: %d vs %d", back.Version, cfg.Version)
	}
	if len(back.Operations) != len(cfg.Operations) {
		t.Fatalf("operation count mismatch: %d vs %d", len(back.Operations), len(cfg.Operations))
	}
	for i := range cfg.Operations {
		if back.Operations[i].ID != cfg.Operations[i].ID {
			t.Fatalf("operation %d id mismatch: %q vs %q", i, back.Operations[i].ID, cfg.Operations[i].ID)
		}
		if len(back.Operations[i].Checks) != len(cfg.Operations[i].Checks) {
			t.Fatalf("operation %d check count mismatch", i)
		}
	}
	maint := back.Operations[1].Checks[0]
	if len(maint.Fields) != 2 || maint.Fields[1] != "notes" {
		t.Fatalf("fields lost in round trip: %v", maint.Fields)
	}
}
