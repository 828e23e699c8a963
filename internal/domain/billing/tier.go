package billing

import (
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
)

// Tier identifies one of the three billing relationships. Each tier names
// the role that pays (the parent) and the subordinate roles it is billed
// for. The three tiers share one engine; everything tier-specific lives in
// the rule set returned by Rules().
type Tier string

const (
	// TierAdmin bills an Admin for its Auditors and FieldAgents
	TierAdmin Tier = "ADMIN"
	// TierSuperAdmin bills a SuperAdmin for its Admins
	TierSuperAdmin Tier = "SUPER_ADMIN"
	// TierSuperSuperAdmin bills the SuperSuperAdmin for every SuperAdmin
	// in the system
	TierSuperSuperAdmin Tier = "SUPER_SUPER_ADMIN"
)

// AllTiers returns all billing tiers, top-most last
func AllTiers() []Tier {
	return []Tier{TierAdmin, TierSuperAdmin, TierSuperSuperAdmin}
}

// IsValid checks if the tier is a known Tier
func (t Tier) IsValid() bool {
	switch t {
	case TierAdmin, TierSuperAdmin, TierSuperSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of Tier
func (t Tier) String() string {
	return string(t)
}

// TierRules captures the per-tier configuration of the billing engine.
type TierRules struct {
	// PayerRole is the role of the parent account that owes the obligation
	PayerRole directory.Role
	// SubordinateRoles are the roles counted by the census for this tier
	SubordinateRoles []directory.Role
	// SpansAllAccounts relaxes the parent filter: the census counts the
	// whole population of SubordinateRoles instead of direct children
	SpansAllAccounts bool
	// ReviewerRole is the role allowed to review payment proofs for this
	// tier's obligations
	ReviewerRole directory.Role
}

// Rules returns the rule set for the tier. The zero value is returned for
// unknown tiers; callers validate with IsValid first.
func (t Tier) Rules() TierRules {
	switch t {
	case TierAdmin:
		return TierRules{
			PayerRole:        directory.RoleAdmin,
			SubordinateRoles: []directory.Role{directory.RoleAuditor, directory.RoleFieldAgent},
			ReviewerRole:     directory.RoleSuperAdmin,
		}
	case TierSuperAdmin:
		return TierRules{
			PayerRole:        directory.RoleSuperAdmin,
			SubordinateRoles: []directory.Role{directory.RoleAdmin},
			ReviewerRole:     directory.RoleSuperSuperAdmin,
		}
	case TierSuperSuperAdmin:
		return TierRules{
			PayerRole:        directory.RoleSuperSuperAdmin,
			SubordinateRoles: []directory.Role{directory.RoleSuperAdmin},
			SpansAllAccounts: true,
			ReviewerRole:     directory.RoleSuperSuperAdmin,
		}
	}
	return TierRules{}
}
