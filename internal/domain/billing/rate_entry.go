package billing

import (
	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateEntry is a versioned rate configuration row for one billing tier.
// At most one entry per tier is active at any time; activating a new entry
// deactivates the tier's previous active one. Historical entries are never
// mutated, so the rate history stays auditable.
type RateEntry struct {
	shared.BaseAggregateRoot
	Tier        Tier            `json:"tier"`
	PerUserRate decimal.Decimal `json:"per_user_rate"` // monthly charge per billable subordinate
	ServiceRate decimal.Decimal `json:"service_rate"`  // flat monthly service fee per parent
	IsActive    bool            `json:"is_active"`
	Notes       string          `json:"notes"`
	CreatedBy   uuid.UUID       `json:"created_by"`
}

// NewRateEntry creates a new active rate entry for a tier
func NewRateEntry(
	tier Tier,
	perUserRate valueobject.Money,
	serviceRate valueobject.Money,
	notes string,
	createdBy uuid.UUID,
) (*RateEntry, error) {
	if !tier.IsValid() {
		return nil, ErrInvalidTier
	}
	if perUserRate.IsNegative() || serviceRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rates cannot be negative")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creating user ID is required")
	}

	return &RateEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Tier:              tier,
		PerUserRate:       perUserRate.RoundToUnit().Amount(),
		ServiceRate:       serviceRate.RoundToUnit().Amount(),
		IsActive:          true,
		Notes:             notes,
		CreatedBy:         createdBy,
	}, nil
}

// Deactivate marks the entry inactive. Amounts are left untouched so
// obligations generated against this entry keep their snapshot meaning.
func (r *RateEntry) Deactivate() {
	r.IsActive = false
	r.IncrementVersion()
}

// PerUserRateMoney returns the per-user rate as a Money value object
func (r *RateEntry) PerUserRateMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.PerUserRate)
}

// ServiceRateMoney returns the service rate as a Money value object
func (r *RateEntry) ServiceRateMoney() valueobject.Money {
	return valueobject.NewMoneyINR(r.ServiceRate)
}
