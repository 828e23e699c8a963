package billing

import (
	"context"
	"errors"
	"sync"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Skip reasons reported per parent in a generation batch
const (
	SkipReasonAlreadyExists = "ALREADY_EXISTS"
	SkipReasonCensusFailed  = "CENSUS_FAILED"
	SkipReasonStorageFailed = "STORAGE_FAILED"
)

// SkippedParent describes a parent left out of a generation batch
type SkippedParent struct {
	ParentID   uuid.UUID `json:"parent_id"`
	ParentName string    `json:"parent_name"`
	Reason     string    `json:"reason"`
}

// GenerationResult is the outcome of one generation batch
type GenerationResult struct {
	Tier    billing.Tier                `json:"tier"`
	Month   string                      `json:"month"`
	Created []billing.PaymentObligation `json:"created"`
	Skipped []SkippedParent             `json:"skipped"`
}

// GenerationService produces the monthly payment ledger. For a target
// month it creates exactly one obligation per eligible parent, skipping
// keys that already exist. Parents are processed on a bounded worker pool;
// a failure for one parent never aborts the batch.
type GenerationService struct {
	obligationRepo billing.PaymentObligationRepository
	rateRepo       billing.RateEntryRepository
	dir            directory.AccountDirectory
	census         *billing.CensusCounter
	workers        int
	log            *zap.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(
	obligationRepo billing.PaymentObligationRepository,
	rateRepo billing.RateEntryRepository,
	dir directory.AccountDirectory,
	workers int,
	log *zap.Logger,
) *GenerationService {
	if workers <= 0 {
		workers = 4
	}
	return &GenerationService{
		obligationRepo: obligationRepo,
		rateRepo:       rateRepo,
		dir:            dir,
		census:         billing.NewCensusCounter(dir),
		workers:        workers,
		log:            log,
	}
}

// Generate runs the batch for (tier, month). It is safe to retry for the
// same key: the obligation repository's atomic insert-if-absent guarantees
// at most one persisted row per {tier, parent, month} even under
// concurrent invocations.
func (s *GenerationService) Generate(ctx context.Context, tier billing.Tier, monthStr string) (*GenerationResult, error) {
	if !tier.IsValid() {
		return nil, billing.ErrInvalidTier
	}
	month, err := billing.ParseBillingMonth(monthStr)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.FindActiveByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, billing.ErrNoActiveRate
	}

	parents, err := s.dir.ListParents(ctx, tier.Rules().PayerRole)
	if err != nil {
		return nil, err
	}

	result := &GenerationResult{
		Tier:    tier,
		Month:   month.String(),
		Created: make([]billing.PaymentObligation, 0, len(parents)),
		Skipped: make([]SkippedParent, 0),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)

	for i := range parents {
		parent := parents[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			created, skip := s.generateForParent(ctx, tier, parent, month, rate)
			mu.Lock()
			defer mu.Unlock()
			if skip != nil {
				result.Skipped = append(result.Skipped, *skip)
			} else if created != nil {
				result.Created = append(result.Created, *created)
			}
		}()
	}
	wg.Wait()

	s.log.Info("Payment generation batch completed",
		zap.String("tier", tier.String()),
		zap.String("month", month.String()),
		zap.Int("parents", len(parents)),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// generateForParent computes and persists one obligation. Errors are
// folded into a skip entry so the batch keeps going.
func (s *GenerationService) generateForParent(
	ctx context.Context,
	tier billing.Tier,
	parent directory.Account,
	month billing.BillingMonth,
	rate *billing.RateEntry,
) (*billing.PaymentObligation, *SkippedParent) {
	census, err := s.census.Count(ctx, tier, parent.ID, month)
	if err != nil {
		s.log.Warn("Census failed for parent",
			zap.String("parent_id", parent.ID.String()),
			zap.String("month", month.String()),
			zap.Error(err),
		)
		return nil, &SkippedParent{ParentID: parent.ID, ParentName: parent.Name, Reason: SkipReasonCensusFailed}
	}

	// The parent itself may be mid-lifecycle: its own creation date drives
	// the service-fee proration.
	proration := billing.Prorate(rate.ServiceRate, parent.CreatedAt, month)

	obligation, err := billing.NewPaymentObligation(tier, parent, month, census, rate, proration)
	if err != nil {
		return nil, &SkippedParent{ParentID: parent.ID, ParentName: parent.Name, Reason: domainCode(err)}
	}

	inserted, err := s.obligationRepo.CreateIfAbsent(ctx, obligation)
	if err != nil {
		s.log.Warn("Failed to persist obligation",
			zap.String("parent_id", parent.ID.String()),
			zap.String("month", month.String()),
			zap.Error(err),
		)
		return nil, &SkippedParent{ParentID: parent.ID, ParentName: parent.Name, Reason: SkipReasonStorageFailed}
	}
	if !inserted {
		return nil, &SkippedParent{ParentID: parent.ID, ParentName: parent.Name, Reason: SkipReasonAlreadyExists}
	}

	return obligation, nil
}

// domainCode extracts the stable code from a domain error
func domainCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL"
}
