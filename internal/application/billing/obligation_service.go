package billing

import (
	"context"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ObligationService serves the ledger's read side. Every obligation going
// out passes through recalculation so listings always show today's rate
// against the month's own head count; the stored rows stay untouched.
type ObligationService struct {
	obligationRepo billing.PaymentObligationRepository
	recalc         *RecalculationService
	census         *CensusService
	log            *zap.Logger
}

// NewObligationService creates a new ObligationService
func NewObligationService(
	obligationRepo billing.PaymentObligationRepository,
	recalc *RecalculationService,
	census *CensusService,
	log *zap.Logger,
) *ObligationService {
	return &ObligationService{
		obligationRepo: obligationRepo,
		recalc:         recalc,
		census:         census,
		log:            log,
	}
}

// ObligationResponse represents an obligation in API responses. Monetary
// fields reflect the recalculated figures, status reflects the due date as
// of the request.
type ObligationResponse struct {
	ID         uuid.UUID    `json:"id"`
	Tier       billing.Tier `json:"tier"`
	ParentID   uuid.UUID    `json:"parent_id"`
	ParentName string       `json:"parent_name"`
	Month      string       `json:"month"`

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

	Status     billing.ObligationStatus `json:"status"`
	PaidAmount *decimal.Decimal         `json:"paid_amount,omitempty"`
	PaidDate   *time.Time               `json:"paid_date,omitempty"`
	ProofRef   *string                  `json:"proof_ref,omitempty"`

	ParentDeleted bool `json:"parent_deleted,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ObligationListResponse is a paginated list of obligations
type ObligationListResponse struct {
	Items    []ObligationResponse `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}

// CensusResponse is the head-count breakdown behind an obligation
type CensusResponse struct {
	Tier                billing.Tier `json:"tier"`
	ParentID            uuid.UUID    `json:"parent_id"`
	Month               string       `json:"month"`
	ActiveCount         int64        `json:"active_count"`
	DeletedInMonthCount int64        `json:"deleted_in_month_count"`
	BillableCount       int64        `json:"billable_count"`
}

func toObligationResponse(o *billing.PaymentObligation, now time.Time) ObligationResponse {
	return ObligationResponse{
		ID:                  o.ID,
		Tier:                o.Tier,
		ParentID:            o.ParentID,
		ParentName:          o.ParentName,
		Month:               o.Month,
		UserCount:           o.UserCount,
		DeletedUserCount:    o.DeletedUserCount,
		PerUserRate:         o.PerUserRate,
		ServiceRate:         o.ServiceRate,
		IsProrated:          o.IsProrated,
		ProratedDays:        o.ProratedDays,
		TotalDaysInMonth:    o.TotalDaysInMonth,
		ProratedServiceRate: o.ProratedServiceRate,
		UserAmount:          o.UserAmount,
		TotalAmount:         o.TotalAmount,
		PeriodStart:         o.PeriodStart,
		PeriodEnd:           o.PeriodEnd,
		DueDate:             o.DueDate,
		Status:              o.EffectiveStatus(now),
		PaidAmount:          o.PaidAmount,
		PaidDate:            o.PaidDate,
		ProofRef:            o.ProofRef,
		ParentDeleted:       o.ParentDeleted,
		CreatedAt:           o.CreatedAt,
	}
}

// List returns obligations matching the filter, recalculated and with
// deleted-parent rows hidden unless the filter opts in to inactive rows.
func (s *ObligationService) List(ctx context.Context, filter billing.ObligationFilter) (*ObligationListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	if filter.Month != nil {
		if _, err := billing.ParseBillingMonth(*filter.Month); err != nil {
			return nil, err
		}
	}
	if filter.Tier != nil && !filter.Tier.IsValid() {
		return nil, billing.ErrInvalidTier
	}

	obligations, total, err := s.obligationRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := make([]ObligationResponse, 0, len(obligations))
	for i := range obligations {
		s.recalc.Recalculate(ctx, &obligations[i])
		if obligations[i].ParentDeleted && !filter.IncludeInactive {
			continue
		}
		items = append(items, toObligationResponse(&obligations[i], now))
	}

	return &ObligationListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Get returns a single obligation, recalculated. A deleted parent does not
// hide a directly addressed row; the flag is carried on the response.
func (s *ObligationService) Get(ctx context.Context, id uuid.UUID) (*ObligationResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound
	}
	s.recalc.Recalculate(ctx, obligation)
	resp := toObligationResponse(obligation, time.Now().UTC())
	return &resp, nil
}

// GetCensus returns the live head-count breakdown behind an obligation,
// bound to the obligation's own billing period.
func (s *ObligationService) GetCensus(ctx context.Context, id uuid.UUID) (*CensusResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound
	}

	month, err := obligation.BillingMonth()
	if err != nil {
		return nil, err
	}

	result, err := s.census.Count(ctx, obligation.Tier, obligation.ParentID, month)
	if err != nil {
		return nil, err
	}

	return &CensusResponse{
		Tier:                obligation.Tier,
		ParentID:            obligation.ParentID,
		Month:               obligation.Month,
		ActiveCount:         result.ActiveCount,
		DeletedInMonthCount: result.DeletedInMonthCount,
		BillableCount:       result.Total(),
	}, nil
}
