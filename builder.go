package ability

// ruleSet is the mutable accumulator used while an ability is assembled.
// Append order is significant: allows are declared first and carve-out denies
// second (or the reverse, to carve an allow back out of a broad deny), and
// the frozen Ability resolves ties by taking the last matching rule.
type ruleSet struct {
	rules []Rule
}

func newRuleSet() *ruleSet {
	return &ruleSet{rules: make([]Rule, 0, 32)}
}

func (rs *ruleSet) can(subject SubjectType, actions ...Action) *ruleSet {
	rs.rules = append(rs.rules, Rule{Effect: EffectAllow, Subject: subject, Actions: actions})
	return rs
}

func (rs *ruleSet) canWhen(subject SubjectType, cond Condition, actions ...Action) *ruleSet {
	rs.rules = append(rs.rules, Rule{Effect: EffectAllow, Subject: subject, Actions: actions, Condition: cond})
	return rs
}

func (rs *ruleSet) canFields(subject SubjectType, fields []string, actions ...Action) *ruleSet {
	rs.rules = append(rs.rules, Rule{Effect: EffectAllow, Subject: subject, Actions: actions, Fields: fields})
	return rs
}

func (rs *ruleSet) cannot(subject SubjectType, actions ...Action) *ruleSet {
	rs.rules = append(rs.rules, Rule{Effect: EffectDeny, Subject: subject, Actions: actions})
	return rs
}

func (rs *ruleSet) cannotWhen(subject SubjectType, cond Condition, actions ...Action) *ruleSet {
	rs.rules = append(rs.rules, Rule{Effect: EffectDeny, Subject: subject, Actions: actions, Condition: cond})
	return rs
}

// freeze marks conditioned rules whose scoping is already satisfied by the
// owning user's own attributes, then produces the immutable Ability.
func (rs *ruleSet) freeze(owner *User) *Ability {
	if owner != nil {
		view := userView{u: owner}
		for i := range rs.rules {
			if len(rs.rules[i].Condition) > 0 {
				rs.rules[i].selfScoped = rs.rules[i].Condition.Matches(view)
			}
		}
	}
	return &Ability{rules: rs.rules}
}

// landlordDomain lists the resource types a landlord organization manages.
var landlordDomain = []SubjectType{
	SubjectProperty, SubjectUnit, SubjectTenantParty, SubjectContractor,
	SubjectInvitation, SubjectMedia, SubjectLease, SubjectRentalPeriod,
	SubjectTransaction,
}

// tenantReadOnly lists the operational entities a tenant may never mutate.
var tenantReadOnly = []SubjectType{
	SubjectProperty, SubjectUnit, SubjectTenantParty, SubjectMedia,
	SubjectLease, SubjectRentalPeriod, SubjectTransaction,
}

// BuildAbility computes the permission set for a user projection. It is a
// pure function of the user's attributes: no storage or network access, and
// two calls with the same snapshot produce equivalent abilities. A user
// without resolvable organization context (or with an unrecognized type)
// receives an empty rule set, so every subsequent check fails closed.
func BuildAbility(user *User) *Ability {
	rs := newRuleSet()
	if user == nil {
		return rs.freeze(nil)
	}
	if !user.HasOrganizationContext() {
		return rs.freeze(user)
	}

	switch user.UserType {
	case UserTypeAdmin:
		for _, st := range SubjectTypes() {
			rs.can(st, ActionManage)
		}

	case UserTypeLandlord:
		buildLandlordRules(rs, user)

	case UserTypeTenant:
		buildTenantRules(rs, user)

	case UserTypeContractor:
		buildContractorRules(rs, user)
	}

	return rs.freeze(user)
}

func buildLandlordRules(rs *ruleSet, user *User) {
	staff := user.ResolveRole() == RoleLandlordStaff
	for _, st := range landlordDomain {
		if staff && st == SubjectTransaction {
			continue
		}
		rs.can(st, ActionManage)
	}
	if staff {
		// staff see payment data but cannot touch it, and get no
		// user-management grant at all
		rs.can(SubjectTransaction, ActionRead)
		return
	}
	// a landlord admin manages users only within the own organization,
	// never globally
	rs.canWhen(SubjectUser, Condition{"organizationId": user.OrganizationID}, ActionManage)
}

func buildTenantRules(rs *ruleSet, user *User) {
	rs.can(SubjectProperty, ActionRead)
	rs.can(SubjectUnit, ActionRead)
	rs.can(SubjectMedia, ActionRead)

	if user.PartyID != "" {
		rs.canWhen(SubjectLease, Condition{"tenant": user.PartyID}, ActionRead)
		rs.canWhen(SubjectRentalPeriod, Condition{"lease": Condition{"tenant": user.PartyID}}, ActionRead)
		rs.canWhen(SubjectTransaction, Condition{"lease": Condition{"tenant": user.PartyID}}, ActionRead)

		// tenants administer co-members of their own party; the denies that
		// follow carve out every non-tenant target regardless of party
		rs.canWhen(SubjectUser, Condition{"partyId": user.PartyID, "userType": UserTypeTenant}, ActionManage, ActionRead)
		rs.cannotWhen(SubjectUser, Condition{"userType": UserTypeLandlord}, ActionManage)
		rs.cannotWhen(SubjectUser, Condition{"userType": UserTypeContractor}, ActionManage)
		rs.cannotWhen(SubjectUser, Condition{"userType": UserTypeAdmin}, ActionManage)
	}

	for _, st := range tenantReadOnly {
		rs.cannot(st, ActionCreate, ActionUpdate, ActionDelete)
	}
}

func buildContractorRules(rs *ruleSet, user *User) {
	rs.can(SubjectProperty, ActionRead)
	rs.can(SubjectUnit, ActionRead)
	rs.can(SubjectMedia, ActionRead)
	rs.can(SubjectLease, ActionRead)
	rs.can(SubjectRentalPeriod, ActionRead)

	for _, st := range []SubjectType{
		SubjectProperty, SubjectUnit, SubjectContractor,
		SubjectLease, SubjectRentalPeriod, SubjectTransaction,
	} {
		rs.cannot(st, ActionCreate, ActionUpdate, ActionDelete)
	}
	// contractors never see payment or billing data
	rs.cannot(SubjectTransaction, ActionRead)

	// carve-backs after the broad denies: maintenance updates are limited to
	// the listed unit fields, uploads cannot be removed once created
	rs.canFields(SubjectUnit, []string{"maintenanceStatus", "notes"}, ActionUpdate)
	rs.can(SubjectMedia, ActionCreate, ActionUpdate)
	if user.PartyID != "" {
		rs.canWhen(SubjectContractor, Condition{"id": user.PartyID}, ActionRead)
	}
}
