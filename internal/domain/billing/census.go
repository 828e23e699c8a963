package billing

import (
	"context"

	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/google/uuid"
)

// CensusCounter counts the billable subordinate accounts attributable to a
// parent during a billing month. The counting rules live in the directory
// query it builds; the per-tier differences (which roles, whether the
// parent filter applies) come from the tier rule set.
type CensusCounter struct {
	dir directory.AccountDirectory
}

// NewCensusCounter creates a CensusCounter over the given directory port
func NewCensusCounter(dir directory.AccountDirectory) *CensusCounter {
	return &CensusCounter{dir: dir}
}

// Count returns the census for (tier, parent, month).
//
// An account is active for the month when it was created on or before the
// period end and was not deleted before the period closed. An account
// deleted inside the period is counted once as deleted-in-month whatever
// its creation date. The two buckets are disjoint, so Total never
// double-counts.
func (c *CensusCounter) Count(ctx context.Context, tier Tier, parentID uuid.UUID, month BillingMonth) (directory.CensusResult, error) {
	rules := tier.Rules()

	q := directory.CensusQuery{
		Roles:       rules.SubordinateRoles,
		PeriodStart: month.PeriodStart(),
		PeriodEnd:   month.PeriodEnd(),
	}
	if !rules.SpansAllAccounts {
		q.ParentID = &parentID
	}

	return c.dir.CountBillable(ctx, q)
}
