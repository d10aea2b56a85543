package ability

import "testing"

func TestContractorMaintenanceFieldUpdate(t *testing.T) {
	ab := BuildAbility(contractorUser())
	unit := &UnitRecord{ID: "unit-1", OrganizationID: "org-1"}

	if !ab.CanUpdateFields(unit, "maintenanceStatus") {
		t.Fatalf("expected maintenanceStatus update")
	}
	if !ab.CanUpdateFields(unit, "maintenanceStatus", "notes") {
		t.Fatalf("expected update within the permitted field set")
	}
	if ab.CanUpdateFields(unit, "maintenanceStatus", "rentAmount") {
		t.Fatalf("expected deny when diff includes a field outside the set")
	}
	if ab.CanUpdateFields(unit, "rentAmount") {
		t.Fatalf("expected deny on an unlisted field")
	}
}

func TestUnrestrictedRuleCoversAllFields(t *testing.T) {
	ab := BuildAbility(landlordAdmin())
	unit := &UnitRecord{ID: "unit-1", OrganizationID: "org-1"}
	if !ab.CanUpdateFields(unit, "rentAmount", "notes", "maintenanceStatus") {
		t.Fatalf("expected unrestricted manage grant to cover every field")
	}
}

func TestCanUpdateFieldsRequiresUpdateGrant(t *testing.T) {
	ab := BuildAbility(tenantUser())
	unit := &UnitRecord{ID: "unit-1", OrganizationID: "org-1"}
	if ab.CanUpdateFields(unit, "maintenanceStatus") {
		t.Fatalf("expected deny when update itself is denied")
	}
}

func TestEmptyDiffFallsBackToPlainUpdateCheck(t *testing.T) {
	ab := BuildAbility(contractorUser())
	unit := &UnitRecord{ID: "unit-1", OrganizationID: "org-1"}
	if !ab.CanUpdateFields(unit) {
		t.Fatalf("expected empty diff to reduce to Can(update)")
	}
}

func TestFieldRestrictionOrderResolution(t *testing.T) {
	// a later restricted allow reopens only its listed fields after a deny
	ab := NewAbility([]Rule{
		{Effect: EffectAllow, Subject: SubjectUnit, Actions: []Action{ActionUpdate}},
		{Effect: EffectDeny, Subject: SubjectUnit, Actions: []Action{ActionUpdate}},
		{Effect: EffectAllow, Subject: SubjectUnit, Actions: []Action{ActionUpdate}, Fields: []string{"notes"}},
	})
	unit := &UnitRecord{ID: "unit-1"}
	if !ab.CanUpdateFields(unit, "notes") {
		t.Fatalf("expected reopened field to pass")
	}
	if ab.CanUpdateFields(unit, "rentAmount") {
		t.Fatalf("expected field outside the reopened set to stay denied")
	}
}
