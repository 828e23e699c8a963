package billing

import (
	"context"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateService manages the versioned rate table. Activating a new rate
// deactivates the tier's previous active entry; historical payment amounts
// are never rewritten.
type RateService struct {
	rateRepo billing.RateEntryRepository
	log      *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(rateRepo billing.RateEntryRepository, log *zap.Logger) *RateService {
	return &RateService{rateRepo: rateRepo, log: log}
}

// SetRateRequest carries the data for a new rate entry
type SetRateRequest struct {
	Tier        billing.Tier    `json:"tier"`
	PerUserRate decimal.Decimal `json:"per_user_rate"`
	ServiceRate decimal.Decimal `json:"service_rate"`
	Notes       string          `json:"notes"`
	CreatedBy   uuid.UUID       `json:"-"`
}

// RateEntryResponse represents a rate entry in API responses
type RateEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Tier        billing.Tier    `json:"tier"`
	PerUserRate decimal.Decimal `json:"per_user_rate"`
	ServiceRate decimal.Decimal `json:"service_rate"`
	IsActive    bool            `json:"is_active"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toRateEntryResponse(e *billing.RateEntry) *RateEntryResponse {
	return &RateEntryResponse{
		ID:          e.ID,
		Tier:        e.Tier,
		PerUserRate: e.PerUserRate,
		ServiceRate: e.ServiceRate,
		IsActive:    e.IsActive,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// SetRate creates a new active rate entry for a tier, replacing the
// current active one atomically.
func (s *RateService) SetRate(ctx context.Context, req SetRateRequest) (*RateEntryResponse, error) {
	entry, err := billing.NewRateEntry(
		req.Tier,
		valueobject.NewMoneyINR(req.PerUserRate),
		valueobject.NewMoneyINR(req.ServiceRate),
		req.Notes,
		req.CreatedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.rateRepo.Activate(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info("Rate entry activated",
		zap.String("tier", entry.Tier.String()),
		zap.String("per_user_rate", entry.PerUserRate.String()),
		zap.String("service_rate", entry.ServiceRate.String()),
	)

	return toRateEntryResponse(entry), nil
}

// GetActiveRate returns the tier's single active rate entry
func (s *RateService) GetActiveRate(ctx context.Context, tier billing.Tier) (*RateEntryResponse, error) {
	if !tier.IsValid() {
		return nil, billing.ErrInvalidTier
	}
	entry, err := s.rateRepo.FindActiveByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, billing.ErrNoActiveRate
	}
	return toRateEntryResponse(entry), nil
}

// ListRates returns the tier's rate history, newest first
func (s *RateService) ListRates(ctx context.Context, tier billing.Tier) ([]RateEntryResponse, error) {
	if !tier.IsValid() {
		return nil, billing.ErrInvalidTier
	}
	entries, err := s.rateRepo.FindByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	responses := make([]RateEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *toRateEntryResponse(&entries[i])
	}
	return responses, nil
}
