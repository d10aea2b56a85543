package ability

// UserType is the coarse classification of an authenticated user
type UserType string

const (
	UserTypeLandlord   UserType = "landlord"
	UserTypeTenant     UserType = "tenant"
	UserTypeContractor UserType = "contractor"
	UserTypeAdmin      UserType = "admin"
)

// Role refines a user type. When absent on the user it is derived from the
// type together with the IsPrimary flag.
type Role string

const (
	RoleLandlordAdmin    Role = "landlord-admin"
	RoleLandlordStaff    Role = "landlord-staff"
	RoleTenantPrimary    Role = "tenant-primary"
	RoleTenantMember     Role = "tenant-member"
	RoleContractorWorker Role = "contractor-worker"
	RoleAdmin            Role = "admin"
)

// User is the authorization-relevant projection of an authenticated user.
// Callers must resolve any populated references (organization, party) to raw
// identifiers before handing the projection to BuildAbility.
type User struct {
	ID             string   `json:"id"`
	UserType       UserType `json:"userType"`
	Role           Role     `json:"role,omitempty"`
	IsPrimary      bool     `json:"isPrimary,omitempty"`
	OrganizationID string   `json:"organizationId,omitempty"`
	PartyID        string   `json:"partyId,omitempty"`
}

// ResolveRole returns the explicit role when set, otherwise the role derived
// from the user type and the IsPrimary flag.
func (u *User) ResolveRole() Role {
	if u == nil {
		return ""
	}
	if u.Role != "" {
		return u.Role
	}
	switch u.UserType {
	case UserTypeLandlord:
		if u.IsPrimary {
			return RoleLandlordAdmin
		}
		return RoleLandlordStaff
	case UserTypeTenant:
		if u.IsPrimary {
			return RoleTenantPrimary
		}
		return RoleTenantMember
	case UserTypeContractor:
		return RoleContractorWorker
	case UserTypeAdmin:
		return RoleAdmin
	}
	return ""
}

// HasOrganizationContext reports whether the user carries the organization
// scoping that every non-admin ability is derived from.
func (u *User) HasOrganizationContext() bool {
	if u == nil {
		return false
	}
	if u.UserType == UserTypeAdmin {
		return true
	}
	return u.OrganizationID != ""
}

// userView exposes the acting user's own attributes through the Record
// interface so the builder can test rule conditions against them.
type userView struct {
	u *User
}

func (v userView) SubjectType() SubjectType { return SubjectUser }

func (v userView) Field(name string) (any, bool) {
	if v.u == nil {
		return nil, false
	}
	switch name {
	case "id":
		return v.u.ID, true
	case "userType":
		return v.u.UserType, true
	case "role":
		return v.u.ResolveRole(), true
	case "organizationId":
		return v.u.OrganizationID, true
	case "partyId":
		return v.u.PartyID, true
	}
	return nil, false
}
