package directory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies an account's position in the operation hierarchy.
// SuperSuperAdmin sits at the root; FieldAgents and Auditors are leaves.
type Role string

const (
	RoleSuperSuperAdmin Role = "SUPER_SUPER_ADMIN"
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleAdmin           Role = "ADMIN"
	RoleAuditor         Role = "AUDITOR"
	RoleFieldAgent      Role = "FIELD_AGENT"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperSuperAdmin, RoleSuperAdmin, RoleAdmin, RoleAuditor, RoleFieldAgent:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Account is the directory's view of a user account. Accounts are created,
// deleted, and otherwise managed by the user-management subsystem; billing
// only ever reads them.
type Account struct {
	ID        uuid.UUID
	Name      string
	Role      Role
	ParentID  *uuid.UUID
	CreatedAt time.Time
	IsDeleted bool
	DeletedAt *time.Time
}

// DeletedWithin reports whether the account was soft-deleted inside [start, end].
func (a *Account) DeletedWithin(start, end time.Time) bool {
	if !a.IsDeleted || a.DeletedAt == nil {
		return false
	}
	return !a.DeletedAt.Before(start) && !a.DeletedAt.After(end)
}

// CensusQuery describes a billable-account count over a billing period.
// A nil ParentID relaxes the parent filter and counts across the whole
// population of the given roles.
type CensusQuery struct {
	Roles       []Role
	ParentID    *uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// CensusResult is the outcome of a billable-account count.
type CensusResult struct {
	// ActiveCount is the number of accounts created on or before the period
	// end and not deleted before the period closed.
	ActiveCount int64
	// DeletedInMonthCount is the number of accounts soft-deleted inside the
	// period, regardless of when they were created.
	DeletedInMonthCount int64
}

// Total returns the billable head count for the period. An account deleted
// inside the period is excluded from ActiveCount and picked up exactly once
// by DeletedInMonthCount, so the sum never double-counts.
func (r CensusResult) Total() int64 {
	return r.ActiveCount + r.DeletedInMonthCount
}

// AccountDirectory is the read-only port to the account-management
// subsystem. Implementations must never mutate directory data.
type AccountDirectory interface {
	// Get returns the account with the given ID, including soft-deleted
	// accounts. Returns nil when no such account exists.
	Get(ctx context.Context, id uuid.UUID) (*Account, error)

	// ListParents returns every non-deleted account holding the given role.
	// These are the candidates for a billing run at the tier that bills
	// that role.
	ListParents(ctx context.Context, role Role) ([]Account, error)

	// CountBillable executes a census query against the directory.
	CountBillable(ctx context.Context, q CensusQuery) (CensusResult, error)
}
