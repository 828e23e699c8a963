package billing

import (
	"context"

	"github.com/google/uuid"
)

// RateEntryRepository defines persistence operations for rate entries
type RateEntryRepository interface {
	// Activate persists a new rate entry and deactivates the tier's
	// previous active entry in the same transaction.
	Activate(ctx context.Context, entry *RateEntry) error

	// FindActiveByTier returns the tier's single active entry, or nil
	FindActiveByTier(ctx context.Context, tier Tier) (*RateEntry, error)

	// FindByID returns the entry with the given ID, or nil
	FindByID(ctx context.Context, id uuid.UUID) (*RateEntry, error)

	// FindByTier returns the tier's rate history, newest first
	FindByTier(ctx context.Context, tier Tier) ([]RateEntry, error)
}

// ObligationFilter defines filtering options for obligation list queries
type ObligationFilter struct {
	Tier            *Tier
	ParentID        *uuid.UUID
	Month           *string
	Status          *ObligationStatus
	IncludeInactive bool
	Page            int
	PageSize        int
}

// PaymentObligationRepository defines persistence operations for the
// payment ledger
type PaymentObligationRepository interface {
	// CreateIfAbsent inserts the obligation unless a row already exists
	// for its {tier, parent, month} key. Returns false without error when
	// the key was already taken. Implementations must use an atomic
	// insert-if-absent (unique constraint + conflict clause), never a
	// read-then-write pair.
	CreateIfAbsent(ctx context.Context, obligation *PaymentObligation) (bool, error)

	// FindByID returns the obligation with the given ID, or nil
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentObligation, error)

	// FindByKey returns the obligation for {tier, parent, month}, or nil
	FindByKey(ctx context.Context, tier Tier, parentID uuid.UUID, month string) (*PaymentObligation, error)

	// FindAll returns obligations matching the filter plus the total count
	// for pagination
	FindAll(ctx context.Context, filter ObligationFilter) ([]PaymentObligation, int64, error)

	// Update persists changes to an existing obligation
	Update(ctx context.Context, obligation *PaymentObligation) error
}

// PaymentProofRepository defines persistence operations for payment proofs
type PaymentProofRepository interface {
	// Save creates or updates a proof
	Save(ctx context.Context, proof *PaymentProof) error

	// FindByID returns the proof with the given ID, or nil
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error)

	// FindByPaymentID returns the proof attached to an obligation, or nil.
	// At most one proof row exists per obligation.
	FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*PaymentProof, error)

	// SaveReview persists a reviewed proof and the obligation it settles in
	// one transaction. Approval and the obligation's status flip succeed or
	// fail together.
	SaveReview(ctx context.Context, proof *PaymentProof, obligation *PaymentObligation) error
}
