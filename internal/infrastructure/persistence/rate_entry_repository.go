package persistence

import (
	"context"
	"errors"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateEntryRepository implements billing.RateEntryRepository using GORM
type RateEntryRepository struct {
	db *gorm.DB
}

// NewRateEntryRepository creates a new rate entry repository
func NewRateEntryRepository(db *gorm.DB) *RateEntryRepository {
	return &RateEntryRepository{db: db}
}

// Activate persists a new rate entry and deactivates the tier's previous
// active entry in the same transaction, so at most one active entry per
// tier ever exists.
func (r *RateEntryRepository) Activate(ctx context.Context, entry *billing.RateEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.RateEntryModel{}).
			Where("tier = ? AND is_active = ?", entry.Tier.String(), true).
			Updates(map[string]any{
				"is_active": false,
				"version":   gorm.Expr("version + 1"),
			}).Error; err != nil {
			return err
		}

		model := models.RateEntryModelFromDomain(entry)
		return tx.Create(model).Error
	})
}

// FindActiveByTier returns the tier's single active entry, or nil
func (r *RateEntryRepository) FindActiveByTier(ctx context.Context, tier billing.Tier) (*billing.RateEntry, error) {
	var model models.RateEntryModel
	err := r.db.WithContext(ctx).
		Where("tier = ? AND is_active = ?", tier.String(), true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID returns the entry with the given ID, or nil
func (r *RateEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RateEntry, error) {
	var model models.RateEntryModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTier returns the tier's rate history, newest first
func (r *RateEntryRepository) FindByTier(ctx context.Context, tier billing.Tier) ([]billing.RateEntry, error) {
	var rows []models.RateEntryModel
	err := r.db.WithContext(ctx).
		Where("tier = ?", tier.String()).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]billing.RateEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}
