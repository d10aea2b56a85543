package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oarkflow/squealx"

	"github.com/rentora/ability"
)

// SQLRecordStore loads candidate records from SQL (squealx) for the guard's
// record-scoped checks. Cross-record references the rule conditions navigate
// into (a rental period's lease, a transaction's lease tenant) are resolved
// here, so the matcher itself never touches storage. A missing row resolves
// to (nil, nil), per the RecordSource contract.
type SQLRecordStore struct {
	db *squealx.DB
}

func NewSQLRecordStore(db *squealx.DB) *SQLRecordStore {
	return &SQLRecordStore{db: db}
}

func (s *SQLRecordStore) LoadRecord(ctx context.Context, ref ability.RecordRef) (ability.Record, error) {
	switch ref.Type {
	case ability.SubjectProperty:
		return s.loadProperty(ctx, ref.ID)
	case ability.SubjectUnit:
		return s.loadUnit(ctx, ref.ID)
	case ability.SubjectLease:
		return s.loadLease(ctx, ref.ID)
	case ability.SubjectRentalPeriod:
		return s.loadRentalPeriod(ctx, ref.ID)
	case ability.SubjectTransaction:
		return s.loadTransaction(ctx, ref.ID)
	case ability.SubjectUser:
		return s.loadUser(ctx, ref.ID)
	case ability.SubjectMedia:
		return s.loadMedia(ctx, ref.ID)
	case ability.SubjectContractor:
		return s.loadContractor(ctx, ref.ID)
	case ability.SubjectTenantParty:
		return s.loadTenantParty(ctx, ref.ID)
	case ability.SubjectInvitation:
		return s.loadInvitation(ctx, ref.ID)
	}
	return nil, fmt.Errorf("unknown record type %q", ref.Type)
}

// SaveProperty inserts or replaces a property row.
func (s *SQLRecordStore) SaveProperty(ctx context.Context, rec *ability.PropertyRecord) error {
	q := `INSERT OR REPLACE INTO properties (id, organization_id, name, created_at)
	      VALUES (:id, :organization_id, :name, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"name":            rec.Name,
		"created_at":      time.Now().UTC(),
	})
	return err
}

// SaveUnit inserts or replaces a unit row.
func (s *SQLRecordStore) SaveUnit(ctx context.Context, rec *ability.UnitRecord) error {
	q := `INSERT OR REPLACE INTO units (id, property_id, organization_id, maintenance_status, notes, created_at)
	      VALUES (:id, :property_id, :organization_id, :maintenance_status, :notes, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":                 rec.ID,
		"property_id":        rec.PropertyID,
		"organization_id":    rec.OrganizationID,
		"maintenance_status": rec.MaintenanceStatus,
		"notes":              rec.Notes,
		"created_at":         time.Now().UTC(),
	})
	return err
}

// SaveLease inserts or replaces a lease row.
func (s *SQLRecordStore) SaveLease(ctx context.Context, rec *ability.LeaseRecord) error {
	q := `INSERT OR REPLACE INTO leases (id, organization_id, unit_id, tenant_party_id, created_at)
	      VALUES (:id, :organization_id, :unit_id, :tenant_party_id, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"unit_id":         rec.UnitID,
		"tenant_party_id": rec.Tenant,
		"created_at":      time.Now().UTC(),
	})
	return err
}

// SaveRentalPeriod inserts or replaces a rental period row. Only the lease
// reference is persisted; the populated lease record is not written back.
func (s *SQLRecordStore) SaveRentalPeriod(ctx context.Context, rec *ability.RentalPeriodRecord) error {
	leaseID := ""
	if rec.Lease != nil {
		leaseID = rec.Lease.ID
	}
	q := `INSERT OR REPLACE INTO rental_periods (id, lease_id, starts_at, ends_at)
	      VALUES (:id, :lease_id, :starts_at, :ends_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":        rec.ID,
		"lease_id":  leaseID,
		"starts_at": sqlNullTimeOrNil(rec.StartsAt),
		"ends_at":   sqlNullTimeOrNil(rec.EndsAt),
	})
	return err
}

// SaveTransaction inserts or replaces a transaction row.
func (s *SQLRecordStore) SaveTransaction(ctx context.Context, rec *ability.TransactionRecord) error {
	leaseID := ""
	if rec.Lease != nil {
		leaseID = rec.Lease.ID
	}
	q := `INSERT OR REPLACE INTO transactions (id, organization_id, lease_id, amount, created_at)
	      VALUES (:id, :organization_id, :lease_id, :amount, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"lease_id":        leaseID,
		"amount":          rec.Amount,
		"created_at":      time.Now().UTC(),
	})
	return err
}

// SaveUser inserts or replaces a user row.
func (s *SQLRecordStore) SaveUser(ctx context.Context, rec *ability.UserRecord) error {
	q := `INSERT OR REPLACE INTO users (id, user_type, role, is_primary, organization_id, party_id, created_at)
	      VALUES (:id, :user_type, :role, 0, :organization_id, :party_id, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"user_type":       string(rec.UserType),
		"role":            string(rec.Role),
		"organization_id": rec.OrganizationID,
		"party_id":        rec.PartyID,
		"created_at":      time.Now().UTC(),
	})
	return err
}

// SaveMedia inserts or replaces a media row.
func (s *SQLRecordStore) SaveMedia(ctx context.Context, rec *ability.MediaRecord) error {
	q := `INSERT OR REPLACE INTO media (id, organization_id, uploaded_by, created_at)
	      VALUES (:id, :organization_id, :uploaded_by, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"uploaded_by":     rec.UploadedBy,
		"created_at":      time.Now().UTC(),
	})
	return err
}

// SaveContractor inserts or replaces a contractor row.
func (s *SQLRecordStore) SaveContractor(ctx context.Context, rec *ability.ContractorRecord) error {
	q := `INSERT OR REPLACE INTO contractors (id, organization_id, name)
	      VALUES (:id, :organization_id, :name)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"name":            rec.Name,
	})
	return err
}

// SaveTenantParty inserts or replaces a tenant party row.
func (s *SQLRecordStore) SaveTenantParty(ctx context.Context, rec *ability.TenantPartyRecord) error {
	q := `INSERT OR REPLACE INTO tenant_parties (id, organization_id, name)
	      VALUES (:id, :organization_id, :name)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"name":            rec.Name,
	})
	return err
}

// SaveInvitation inserts or replaces an invitation row.
func (s *SQLRecordStore) SaveInvitation(ctx context.Context, rec *ability.InvitationRecord) error {
	q := `INSERT OR REPLACE INTO invitations (id, organization_id, email, created_at)
	      VALUES (:id, :organization_id, :email, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"id":              rec.ID,
		"organization_id": rec.OrganizationID,
		"email":           rec.Email,
		"created_at":      time.Now().UTC(),
	})
	return err
}

func (s *SQLRecordStore) loadProperty(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, name FROM properties WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.PropertyRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.Name); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadUnit(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, property_id, organization_id, maintenance_status, notes FROM units WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.UnitRecord{}
	if err := r.Scan(&rec.ID, &rec.PropertyID, &rec.OrganizationID, &rec.MaintenanceStatus, &rec.Notes); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadLease(ctx context.Context, id string) (ability.Record, error) {
	rec, err := s.scanLease(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) scanLease(ctx context.Context, id string) (*ability.LeaseRecord, error) {
	q := `SELECT id, organization_id, unit_id, tenant_party_id FROM leases WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.LeaseRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.UnitID, &rec.Tenant); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadRentalPeriod(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, lease_id, starts_at, ends_at FROM rental_periods WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	var recID, leaseID string
	var startsAt, endsAt sql.NullString
	found := r.Next()
	if found {
		if err := r.Scan(&recID, &leaseID, &startsAt, &endsAt); err != nil {
			r.Close()
			return nil, err
		}
	}
	r.Close()
	if !found {
		return nil, nil
	}
	lease, err := s.scanLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	rec := &ability.RentalPeriodRecord{ID: recID, Lease: lease}
	if rec.StartsAt, err = timeFromColumn(startsAt); err != nil {
		return nil, fmt.Errorf("rental period %s starts_at: %w", recID, err)
	}
	if rec.EndsAt, err = timeFromColumn(endsAt); err != nil {
		return nil, fmt.Errorf("rental period %s ends_at: %w", recID, err)
	}
	return rec, nil
}

func (s *SQLRecordStore) loadTransaction(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, lease_id, amount FROM transactions WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	var recID, orgID, leaseID string
	var amount float64
	found := r.Next()
	if found {
		if err := r.Scan(&recID, &orgID, &leaseID, &amount); err != nil {
			r.Close()
			return nil, err
		}
	}
	r.Close()
	if !found {
		return nil, nil
	}
	lease, err := s.scanLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	return &ability.TransactionRecord{ID: recID, OrganizationID: orgID, Lease: lease, Amount: amount}, nil
}

func (s *SQLRecordStore) loadUser(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, user_type, role, organization_id, party_id FROM users WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	var userType, role string
	rec := &ability.UserRecord{}
	if err := r.Scan(&rec.ID, &userType, &role, &rec.OrganizationID, &rec.PartyID); err != nil {
		return nil, err
	}
	rec.UserType = ability.UserType(userType)
	rec.Role = ability.Role(role)
	return rec, nil
}

func (s *SQLRecordStore) loadMedia(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, uploaded_by FROM media WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.MediaRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.UploadedBy); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadContractor(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, name FROM contractors WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.ContractorRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.Name); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadTenantParty(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, name FROM tenant_parties WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.TenantPartyRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.Name); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLRecordStore) loadInvitation(ctx context.Context, id string) (ability.Record, error) {
	q := `SELECT id, organization_id, email FROM invitations WHERE id = :id`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Next() {
		return nil, nil
	}
	rec := &ability.InvitationRecord{}
	if err := r.Scan(&rec.ID, &rec.OrganizationID, &rec.Email); err != nil {
		return nil, err
	}
	return rec, nil
}
