package persistence

import (
	"context"
	"errors"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentProofRepository implements billing.PaymentProofRepository using GORM
type PaymentProofRepository struct {
	db *gorm.DB
}

// NewPaymentProofRepository creates a new payment proof repository
func NewPaymentProofRepository(db *gorm.DB) *PaymentProofRepository {
	return &PaymentProofRepository{db: db}
}

// Save creates or updates a proof. Resubmission of a rejected proof reuses
// the same row, so Save is an upsert on the primary key.
func (r *PaymentProofRepository) Save(ctx context.Context, proof *billing.PaymentProof) error {
	model := models.PaymentProofModelFromDomain(proof)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID returns the proof with the given ID, or nil
func (r *PaymentProofRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentProof, error) {
	var model models.PaymentProofModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPaymentID returns the proof attached to an obligation, or nil
func (r *PaymentProofRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*billing.PaymentProof, error) {
	var model models.PaymentProofModel
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveReview persists a reviewed proof and the obligation it settles in one
// transaction. An approval that cannot flip the obligation to paid rolls
// the proof update back with it.
func (r *PaymentProofRepository) SaveReview(ctx context.Context, proof *billing.PaymentProof, obligation *billing.PaymentObligation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		proofModel := models.PaymentProofModelFromDomain(proof)
		if err := tx.Save(proofModel).Error; err != nil {
			return err
		}

		obligationModel := models.PaymentObligationModelFromDomain(obligation)
		return tx.Save(obligationModel).Error
	})
}
