package ability

import "testing"

func landlordAdmin() *User {
	return &User{ID: "u-admin", UserType: UserTypeLandlord, IsPrimary: true, OrganizationID: "org-1"}
}

func landlordStaff() *User {
	return &User{ID: "u-staff", UserType: UserTypeLandlord, OrganizationID: "org-1"}
}

func tenantUser() *User {
	return &User{ID: "u-tenant", UserType: UserTypeTenant, OrganizationID: "org-1", PartyID: "party-1"}
}

func contractorUser() *User {
	return &User{ID: "u-worker", UserType: UserTypeContractor, OrganizationID: "org-1", PartyID: "contractor-1"}
}

func platformAdmin() *User {
	return &User{ID: "u-platform", UserType: UserTypeAdmin}
}

func TestNilUserFailsClosed(t *testing.T) {
	ab := BuildAbility(nil)
	for _, st := range SubjectTypes() {
		for _, a := range Actions() {
			if ab.Can(a, SubjectOf(st)) {
				t.Fatalf("expected deny for nil user on %s %s", a, st)
			}
		}
	}
}

func TestMissingOrganizationContextFailsClosed(t *testing.T) {
	u := &User{ID: "u1", UserType: UserTypeLandlord, IsPrimary: true}
	ab := BuildAbility(u)
	if len(ab.Rules()) != 0 {
		t.Fatalf("expected empty rule set without organization context, got %d rules", len(ab.Rules()))
	}
	if ab.Can(ActionRead, SubjectOf(SubjectProperty)) {
		t.Fatalf("expected deny without organization context")
	}
}

func TestUnknownUserTypeFailsClosed(t *testing.T) {
	u := &User{ID: "u1", UserType: UserType("robot"), OrganizationID: "org-1"}
	ab := BuildAbility(u)
	if len(ab.Rules()) != 0 {
		t.Fatalf("expected empty rule set for unknown user type")
	}
}

func TestManageCoversEveryAction(t *testing.T) {
	ab := BuildAbility(landlordAdmin())
	for _, a := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage} {
		if !ab.Can(a, SubjectOf(SubjectProperty)) {
			t.Fatalf("expected manage grant to cover %s", a)
		}
	}
}

func TestManageCheckNeedsManageGrant(t *testing.T) {
	ab := NewAbility([]Rule{
		{Effect: EffectAllow, Subject: SubjectProperty, Actions: []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}},
	})
	if ab.Can(ActionManage, SubjectOf(SubjectProperty)) {
		t.Fatalf("expected manage check to fail without a manage grant")
	}
}

func TestLastMatchingRuleWins(t *testing.T) {
	allowThenDeny := NewAbility([]Rule{
		{Effect: EffectAllow, Subject: SubjectLease, Actions: []Action{ActionRead}},
		{Effect: EffectDeny, Subject: SubjectLease, Actions: []Action{ActionRead}},
	})
	if allowThenDeny.Can(ActionRead, SubjectOf(SubjectLease)) {
		t.Fatalf("expected later deny to override earlier allow")
	}

	denyThenAllow := NewAbility([]Rule{
		{Effect: EffectDeny, Subject: SubjectLease, Actions: []Action{ActionRead}},
		{Effect: EffectAllow, Subject: SubjectLease, Actions: []Action{ActionRead}},
	})
	if !denyThenAllow.Can(ActionRead, SubjectOf(SubjectLease)) {
		t.Fatalf("expected later allow to override earlier deny")
	}
}

func TestNoMatchingRuleMeansDeny(t *testing.T) {
	ab := NewAbility([]Rule{
		{Effect: EffectAllow, Subject: SubjectProperty, Actions: []Action{ActionRead}},
	})
	if ab.Can(ActionRead, SubjectOf(SubjectLease)) {
		t.Fatalf("expected deny when no rule speaks for the subject")
	}
	if ab.Can(ActionUpdate, SubjectOf(SubjectProperty)) {
		t.Fatalf("expected deny when no rule speaks for the action")
	}
}

func TestPlatformAdminManagesEverything(t *testing.T) {
	ab := BuildAbility(platformAdmin())
	for _, st := range SubjectTypes() {
		if !ab.Can(ActionManage, SubjectOf(st)) {
			t.Fatalf("expected platform admin manage on %s", st)
		}
	}
}

func TestLandlordAdminManagesUsersInOwnOrg(t *testing.T) {
	ab := BuildAbility(landlordAdmin())

	// type-level check passes: the grant is scoped to the admin's own org
	if !ab.Can(ActionManage, SubjectOf(SubjectUser)) {
		t.Fatalf("expected landlord admin type-level user management")
	}

	same := &UserRecord{ID: "u2", UserType: UserTypeLandlord, OrganizationID: "org-1"}
	if !ab.Can(ActionManage, RecordSubject(same)) {
		t.Fatalf("expected manage on same-org user record")
	}

	other := &UserRecord{ID: "u3", UserType: UserTypeLandlord, OrganizationID: "org-2"}
	if ab.Can(ActionManage, RecordSubject(other)) {
		t.Fatalf("expected deny on other-org user record")
	}
}

func TestLandlordStaffTransactionAndUserLimits(t *testing.T) {
	ab := BuildAbility(landlordStaff())

	if !ab.Can(ActionRead, SubjectOf(SubjectTransaction)) {
		t.Fatalf("expected staff to read transactions")
	}
	for _, a := range []Action{ActionCreate, ActionUpdate, ActionDelete, ActionManage} {
		if ab.Can(a, SubjectOf(SubjectTransaction)) {
			t.Fatalf("expected staff deny on transaction %s", a)
		}
	}
	if ab.Can(ActionManage, SubjectOf(SubjectUser)) {
		t.Fatalf("expected staff deny on user management")
	}
	if !ab.Can(ActionManage, SubjectOf(SubjectProperty)) {
		t.Fatalf("expected staff manage on properties")
	}
}

func TestTenantOwnLeaseScoping(t *testing.T) {
	ab := BuildAbility(tenantUser())

	own := &LeaseRecord{ID: "l1", OrganizationID: "org-1", Tenant: "party-1"}
	if !ab.Can(ActionRead, RecordSubject(own)) {
		t.Fatalf("expected tenant to read own lease")
	}

	foreign := &LeaseRecord{ID: "l2", OrganizationID: "org-1", Tenant: "party-2"}
	if ab.Can(ActionRead, RecordSubject(foreign)) {
		t.Fatalf("expected deny on another party's lease")
	}

	// type-level lease read stays denied: the grant only exists against a
	// concrete lease the tenant is on
	if ab.Can(ActionRead, SubjectOf(SubjectLease)) {
		t.Fatalf("expected type-level lease read deny for tenant")
	}

	if ab.Can(ActionUpdate, RecordSubject(own)) {
		t.Fatalf("expected tenant update deny even on own lease")
	}
}

func TestTenantNestedLeaseScoping(t *testing.T) {
	ab := BuildAbility(tenantUser())
	own := &LeaseRecord{ID: "l1", OrganizationID: "org-1", Tenant: "party-1"}
	foreign := &LeaseRecord{ID: "l2", OrganizationID: "org-1", Tenant: "party-2"}

	if !ab.Can(ActionRead, RecordSubject(&RentalPeriodRecord{ID: "rp1", Lease: own})) {
		t.Fatalf("expected tenant to read own rental period")
	}
	if ab.Can(ActionRead, RecordSubject(&RentalPeriodRecord{ID: "rp2", Lease: foreign})) {
		t.Fatalf("expected deny on foreign rental period")
	}
	// unpopulated lease reference cannot prove ownership
	if ab.Can(ActionRead, RecordSubject(&RentalPeriodRecord{ID: "rp3"})) {
		t.Fatalf("expected deny on rental period without populated lease")
	}

	if !ab.Can(ActionRead, RecordSubject(&TransactionRecord{ID: "t1", OrganizationID: "org-1", Lease: own})) {
		t.Fatalf("expected tenant to read own transaction")
	}
	if ab.Can(ActionRead, RecordSubject(&TransactionRecord{ID: "t2", OrganizationID: "org-1", Lease: foreign})) {
		t.Fatalf("expected deny on foreign transaction")
	}
}

func TestTenantManagesOwnPartyMembersOnly(t *testing.T) {
	ab := BuildAbility(tenantUser())

	member := &UserRecord{ID: "u5", UserType: UserTypeTenant, PartyID: "party-1"}
	if !ab.Can(ActionManage, RecordSubject(member)) {
		t.Fatalf("expected tenant to manage own party member")
	}

	outsider := &UserRecord{ID: "u6", UserType: UserTypeTenant, PartyID: "party-2"}
	if ab.Can(ActionManage, RecordSubject(outsider)) {
		t.Fatalf("expected deny on another party's member")
	}

	landlord := &UserRecord{ID: "u7", UserType: UserTypeLandlord, OrganizationID: "org-1"}
	if ab.Can(ActionManage, RecordSubject(landlord)) {
		t.Fatalf("expected deny on managing a landlord account")
	}
}

func TestTenantWithoutPartyHasNoLeaseAccess(t *testing.T) {
	u := &User{ID: "u8", UserType: UserTypeTenant, OrganizationID: "org-1"}
	ab := BuildAbility(u)
	own := &LeaseRecord{ID: "l1", OrganizationID: "org-1", Tenant: "party-1"}
	if ab.Can(ActionRead, RecordSubject(own)) {
		t.Fatalf("expected deny for tenant without a party")
	}
	if !ab.Can(ActionRead, SubjectOf(SubjectProperty)) {
		t.Fatalf("expected property read to survive missing party")
	}
}

func TestContractorTransactionBlackout(t *testing.T) {
	ab := BuildAbility(contractorUser())
	for _, a := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage} {
		if ab.Can(a, SubjectOf(SubjectTransaction)) {
			t.Fatalf("expected contractor deny on transaction %s", a)
		}
	}
}

func TestContractorReadAndCarveBacks(t *testing.T) {
	ab := BuildAbility(contractorUser())

	for _, st := range []SubjectType{SubjectProperty, SubjectUnit, SubjectMedia, SubjectLease, SubjectRentalPeriod} {
		if !ab.Can(ActionRead, SubjectOf(st)) {
			t.Fatalf("expected contractor read on %s", st)
		}
	}
	if ab.Can(ActionDelete, SubjectOf(SubjectUnit)) {
		t.Fatalf("expected contractor delete deny on units")
	}
	if !ab.Can(ActionCreate, SubjectOf(SubjectMedia)) {
		t.Fatalf("expected contractor media upload")
	}
	if ab.Can(ActionDelete, SubjectOf(SubjectMedia)) {
		t.Fatalf("expected contractor media delete deny")
	}

	self := &ContractorRecord{ID: "contractor-1", OrganizationID: "org-1"}
	if !ab.Can(ActionRead, RecordSubject(self)) {
		t.Fatalf("expected contractor to read own company record")
	}
	other := &ContractorRecord{ID: "contractor-2", OrganizationID: "org-1"}
	if ab.Can(ActionRead, RecordSubject(other)) {
		t.Fatalf("expected deny on another contractor record")
	}
}

func TestBuildAbilityIsDeterministic(t *testing.T) {
	u := tenantUser()
	a := BuildAbility(u)
	b := BuildAbility(u)
	if len(a.Rules()) != len(b.Rules()) {
		t.Fatalf("rule counts differ: %d vs %d", len(a.Rules()), len(b.Rules()))
	}
	own := &LeaseRecord{ID: "l1", OrganizationID: "org-1", Tenant: "party-1"}
	checks := []struct {
		action Action
		subj   Subject
	}{
		{ActionRead, RecordSubject(own)},
		{ActionRead, SubjectOf(SubjectProperty)},
		{ActionUpdate, SubjectOf(SubjectUnit)},
		{ActionManage, SubjectOf(SubjectUser)},
	}
	for _, c := range checks {
		if a.Can(c.action, c.subj) != b.Can(c.action, c.subj) {
			t.Fatalf("non-deterministic answer for %s %s", c.action, c.subj.Type)
		}
	}
}

func TestCannotIsNegationOfCan(t *testing.T) {
	ab := BuildAbility(landlordAdmin())
	subj := SubjectOf(SubjectProperty)
	if ab.Can(ActionRead, subj) == ab.Cannot(ActionRead, subj) {
		t.Fatalf("Can and Cannot must disagree")
	}
}

func TestParseVocabulary(t *testing.T) {
	if _, ok := ParseAction("read"); !ok {
		t.Fatalf("expected read to parse")
	}
	if _, ok := ParseAction("browse"); ok {
		t.Fatalf("expected unknown action to be rejected")
	}
	if _, ok := ParseSubjectType("rentalPeriod"); !ok {
		t.Fatalf("expected rentalPeriod to parse")
	}
	if _, ok := ParseSubjectType("widget"); ok {
		t.Fatalf("expected unknown subject to be rejected")
	}
}

func BenchmarkBuildAbility(b *testing.B) {
	u := tenantUser()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		BuildAbility(u)
	}
}

func BenchmarkCanRecordCheck(b *testing.B) {
	ab := BuildAbility(tenantUser())
	subj := RecordSubject(&LeaseRecord{ID: "l1", OrganizationID: "org-1", Tenant: "party-1"})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ab.Can(ActionRead, subj)
	}
}
