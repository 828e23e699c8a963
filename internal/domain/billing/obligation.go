package billing

import (
	"fmt"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationStatus represents the payment status of an obligation
type ObligationStatus string

const (
	ObligationStatusPending ObligationStatus = "PENDING"
	ObligationStatusPaid    ObligationStatus = "PAID"
	ObligationStatusOverdue ObligationStatus = "OVERDUE"
)

// IsValid checks if the status is a valid ObligationStatus
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusPaid, ObligationStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of ObligationStatus
func (s ObligationStatus) String() string {
	return string(s)
}

// PaymentObligation is the monthly ledger row for one parent account. The
// key {tier, parent, month} is unique: generation refuses to create a
// second row for an existing key. Monetary fields are a generation-time
// snapshot; the read path overlays current figures without persisting them.
// Obligations are never deleted, only soft-deactivated.
type PaymentObligation struct {
	shared.BaseAggregateRoot
	Tier       Tier      `json:"tier"`
	ParentID   uuid.UUID `json:"parent_id"`
	ParentName string    `json:"parent_name"`
	Month      string    `json:"month"` // "YYYY-MM"

	UserCount        int64 `json:"user_count"`
	DeletedUserCount int64 `json:"deleted_user_count"`

	PerUserRate decimal.Decimal `json:"per_user_rate"`
	ServiceRate decimal.Decimal `json:"service_rate"`

	IsProrated          bool            `json:"is_prorated"`
	ProratedDays        int             `json:"prorated_days"`
	TotalDaysInMonth    int             `json:"total_days_in_month"`
	ProratedServiceRate decimal.Decimal `json:"prorated_service_rate"`

	UserAmount  decimal.Decimal `json:"user_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	DueDate     time.Time `json:"due_date"`

	Status     ObligationStatus `json:"status"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidDate   *time.Time       `json:"paid_date,omitempty"`
	ProofRef   *string          `json:"proof_ref,omitempty"`

	IsActive bool `json:"is_active"`

	// ParentDeleted is a read-path flag: the parent account no longer
	// exists, so recalculation was skipped and listings hide the row by
	// default. Never persisted.
	ParentDeleted bool `json:"parent_deleted,omitempty" gorm:"-"`
}

// NewPaymentObligation builds the ledger row for one parent and month from
// the census, the tier's active rate, and the parent's own proration.
func NewPaymentObligation(
	tier Tier,
	parent directory.Account,
	month BillingMonth,
	census directory.CensusResult,
	rate *RateEntry,
	proration ProrationResult,
) (*PaymentObligation, error) {
	if !tier.IsValid() {
		return nil, ErrInvalidTier
	}
	if parent.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent account ID cannot be empty")
	}
	if rate == nil {
		return nil, ErrNoActiveRate
	}
	if rate.Tier != tier {
		return nil, shared.NewDomainError("RATE_TIER_MISMATCH",
			fmt.Sprintf("Rate entry is for tier %s, not %s", rate.Tier, tier))
	}

	userCount := census.Total()
	userAmount := rate.PerUserRate.Mul(decimal.NewFromInt(userCount))
	totalAmount := userAmount.Add(proration.Amount)

	return &PaymentObligation{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Tier:                tier,
		ParentID:            parent.ID,
		ParentName:          parent.Name,
		Month:               month.String(),
		UserCount:           userCount,
		DeletedUserCount:    census.DeletedInMonthCount,
		PerUserRate:         rate.PerUserRate,
		ServiceRate:         rate.ServiceRate,
		IsProrated:          proration.IsProrated,
		ProratedDays:        proration.ProratedDays,
		TotalDaysInMonth:    proration.TotalDaysInMonth,
		ProratedServiceRate: proration.Amount,
		UserAmount:          userAmount,
		TotalAmount:         totalAmount,
		PeriodStart:         month.PeriodStart(),
		PeriodEnd:           month.PeriodEnd(),
		DueDate:             month.PeriodEnd(),
		Status:              ObligationStatusPending,
		IsActive:            true,
	}, nil
}

// BillingMonth returns the obligation's month as a BillingMonth
func (o *PaymentObligation) BillingMonth() (BillingMonth, error) {
	return ParseBillingMonth(o.Month)
}

// MarkPaid records an approved payment against the obligation
func (o *PaymentObligation) MarkPaid(amount decimal.Decimal, paidDate time.Time, proofRef string) error {
	if o.Status == ObligationStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Obligation is already paid")
	}
	o.Status = ObligationStatusPaid
	o.PaidAmount = &amount
	o.PaidDate = &paidDate
	if proofRef != "" {
		o.ProofRef = &proofRef
	}
	o.IncrementVersion()
	return nil
}

// Deactivate soft-deactivates the obligation. Rows are never hard-deleted.
func (o *PaymentObligation) Deactivate() {
	o.IsActive = false
	o.IncrementVersion()
}

// IsOverdueAt reports whether the obligation is unpaid past its due date
func (o *PaymentObligation) IsOverdueAt(now time.Time) bool {
	return o.Status != ObligationStatusPaid && now.After(o.DueDate)
}

// EffectiveStatus returns the status as of now: a pending obligation past
// its due date reads as overdue. Evaluated on the read path only; the
// stored status stays authoritative.
func (o *PaymentObligation) EffectiveStatus(now time.Time) ObligationStatus {
	if o.Status == ObligationStatusPending && o.IsOverdueAt(now) {
		return ObligationStatusOverdue
	}
	return o.Status
}

// Overlay refreshes the derived monetary fields from a current rate and a
// current (period-bound) census, leaving payment facts untouched. It
// mutates only the in-memory copy handed to callers.
func (o *PaymentObligation) Overlay(census directory.CensusResult, rate *RateEntry, proration ProrationResult) {
	o.UserCount = census.Total()
	o.DeletedUserCount = census.DeletedInMonthCount
	o.PerUserRate = rate.PerUserRate
	o.ServiceRate = rate.ServiceRate
	o.IsProrated = proration.IsProrated
	o.ProratedDays = proration.ProratedDays
	o.TotalDaysInMonth = proration.TotalDaysInMonth
	o.ProratedServiceRate = proration.Amount
	o.UserAmount = rate.PerUserRate.Mul(decimal.NewFromInt(o.UserCount))
	o.TotalAmount = o.UserAmount.Add(proration.Amount)
}
