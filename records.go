package ability

import "time"

// Concrete record projections for the property domain. Each type carries its
// subject tag explicitly and resolves fields through a plain switch, so the
// decision engine never relies on reflection. Reference fields hold either a
// raw identifier or a populated sub-record; callers loading records are
// responsible for populating whatever the rule conditions navigate into.

// PropertyRecord is a rentable property
type PropertyRecord struct {
	ID             string
	OrganizationID string
	Name           string
}

func (*PropertyRecord) SubjectType() SubjectType { return SubjectProperty }

func (p *PropertyRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "organizationId":
		return p.OrganizationID, true
	case "name":
		return p.Name, true
	}
	return nil, false
}

// UnitRecord is a single unit within a property
type UnitRecord struct {
	ID                string
	PropertyID        string
	OrganizationID    string
	MaintenanceStatus string
	Notes             string
}

func (*UnitRecord) SubjectType() SubjectType { return SubjectUnit }

func (u *UnitRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "property":
		return u.PropertyID, true
	case "organizationId":
		return u.OrganizationID, true
	case "maintenanceStatus":
		return u.MaintenanceStatus, true
	case "notes":
		return u.Notes, true
	}
	return nil, false
}

// LeaseRecord links a tenant party to a unit. Tenant holds the raw party
// identifier after population.
type LeaseRecord struct {
	ID             string
	OrganizationID string
	UnitID         string
	Tenant         string
}

func (*LeaseRecord) SubjectType() SubjectType { return SubjectLease }

func (l *LeaseRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "organizationId":
		return l.OrganizationID, true
	case "unit":
		return l.UnitID, true
	case "tenant":
		return l.Tenant, true
	}
	return nil, false
}

// RentalPeriodRecord is a billing period under a lease. Lease must be
// populated before party-scoped conditions can match.
type RentalPeriodRecord struct {
	ID       string
	Lease    *LeaseRecord
	StartsAt time.Time
	EndsAt   time.Time
}

func (*RentalPeriodRecord) SubjectType() SubjectType { return SubjectRentalPeriod }

func (rp *RentalPeriodRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return rp.ID, true
	case "lease":
		if rp.Lease == nil {
			return nil, false
		}
		return rp.Lease, true
	}
	return nil, false
}

// TransactionRecord is a payment against a lease
type TransactionRecord struct {
	ID             string
	OrganizationID string
	Lease          *LeaseRecord
	Amount         float64
}

func (*TransactionRecord) SubjectType() SubjectType { return SubjectTransaction }

func (t *TransactionRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "organizationId":
		return t.OrganizationID, true
	case "lease":
		if t.Lease == nil {
			return nil, false
		}
		return t.Lease, true
	case "amount":
		return t.Amount, true
	}
	return nil, false
}

// UserRecord is a stored user account as a check target (distinct from the
// acting User projection)
type UserRecord struct {
	ID             string
	UserType       UserType
	Role           Role
	OrganizationID string
	PartyID        string
}

func (*UserRecord) SubjectType() SubjectType { return SubjectUser }

func (u *UserRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return u.ID, true
	case "userType":
		return u.UserType, true
	case "role":
		return u.Role, true
	case "organizationId":
		return u.OrganizationID, true
	case "partyId":
		return u.PartyID, true
	}
	return nil, false
}

// MediaRecord is an uploaded document or photo
type MediaRecord struct {
	ID             string
	OrganizationID string
	UploadedBy     string
}

func (*MediaRecord) SubjectType() SubjectType { return SubjectMedia }

func (m *MediaRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "organizationId":
		return m.OrganizationID, true
	case "uploadedBy":
		return m.UploadedBy, true
	}
	return nil, false
}

// ContractorRecord is a contracting company or worker party
type ContractorRecord struct {
	ID             string
	OrganizationID string
	Name           string
}

func (*ContractorRecord) SubjectType() SubjectType { return SubjectContractor }

func (c *ContractorRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return c.ID, true
	case "organizationId":
		return c.OrganizationID, true
	case "name":
		return c.Name, true
	}
	return nil, false
}

// TenantPartyRecord is the tenant household/company a lease is signed with
type TenantPartyRecord struct {
	ID             string
	OrganizationID string
	Name           string
}

func (*TenantPartyRecord) SubjectType() SubjectType { return SubjectTenantParty }

func (t *TenantPartyRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "organizationId":
		return t.OrganizationID, true
	case "name":
		return t.Name, true
	}
	return nil, false
}

// InvitationRecord is a pending invite into an organization or party
type InvitationRecord struct {
	ID             string
	OrganizationID string
	Email          string
}

func (*InvitationRecord) SubjectType() SubjectType { return SubjectInvitation }

func (i *InvitationRecord) Field(name string) (any, bool) {
	switch name {
	case "id":
		return i.ID, true
	case "organizationId":
		return i.OrganizationID, true
	case "email":
		return i.Email, true
	}
	return nil, false
}
