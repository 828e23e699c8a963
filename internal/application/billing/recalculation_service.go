package billing

import (
	"context"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"go.uber.org/zap"
)

// RecalculationService refreshes an obligation's derived monetary fields
// on every read. The census stays bound to the obligation's own period;
// the rate is whatever is active right now. Nothing here is ever persisted
// and nothing here ever fails the read: if a lookup errors, the stored
// snapshot is returned unchanged and the discrepancy is logged.
type RecalculationService struct {
	rateRepo billing.RateEntryRepository
	census   *CensusService
	dir      directory.AccountDirectory
	log      *zap.Logger
}

// NewRecalculationService creates a new RecalculationService
func NewRecalculationService(
	rateRepo billing.RateEntryRepository,
	census *CensusService,
	dir directory.AccountDirectory,
	log *zap.Logger,
) *RecalculationService {
	return &RecalculationService{
		rateRepo: rateRepo,
		census:   census,
		dir:      dir,
		log:      log,
	}
}

// Recalculate overlays current figures onto the in-memory obligation and
// returns it. Payment facts (status, paidAmount, paidDate) are left as the
// authoritative historical record. When the parent account has been
// deleted the obligation is returned unmodified with ParentDeleted set so
// callers can filter it out of default listings.
func (s *RecalculationService) Recalculate(ctx context.Context, obligation *billing.PaymentObligation) *billing.PaymentObligation {
	month, err := obligation.BillingMonth()
	if err != nil {
		s.log.Warn("Stored obligation has malformed month; returning snapshot",
			zap.String("obligation_id", obligation.ID.String()),
			zap.String("month", obligation.Month),
		)
		return obligation
	}

	parent, err := s.dir.Get(ctx, obligation.ParentID)
	if err != nil {
		s.log.Warn("Parent lookup failed during recalculation; returning snapshot",
			zap.String("obligation_id", obligation.ID.String()),
			zap.Error(err),
		)
		return obligation
	}
	if parent == nil || parent.IsDeleted {
		obligation.ParentDeleted = true
		return obligation
	}

	rate, err := s.rateRepo.FindActiveByTier(ctx, obligation.Tier)
	if err != nil || rate == nil {
		s.log.Warn("Active rate lookup failed during recalculation; returning snapshot",
			zap.String("obligation_id", obligation.ID.String()),
			zap.String("tier", obligation.Tier.String()),
			zap.Error(err),
		)
		return obligation
	}

	// The census query is bound to the obligation's own period, so
	// accounts created or deleted after the month closed never shift a
	// historical head count. Only the rate is wall-clock.
	census, err := s.census.Count(ctx, obligation.Tier, obligation.ParentID, month)
	if err != nil {
		s.log.Warn("Census failed during recalculation; returning snapshot",
			zap.String("obligation_id", obligation.ID.String()),
			zap.Error(err),
		)
		return obligation
	}

	proration := billing.Prorate(rate.ServiceRate, parent.CreatedAt, month)
	obligation.Overlay(census, rate, proration)
	return obligation
}

// RecalculateAll applies Recalculate to a slice of obligations in place
func (s *RecalculationService) RecalculateAll(ctx context.Context, obligations []billing.PaymentObligation) []billing.PaymentObligation {
	for i := range obligations {
		s.Recalculate(ctx, &obligations[i])
	}
	return obligations
}
