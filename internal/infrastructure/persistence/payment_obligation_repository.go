package persistence

import (
	"context"
	"errors"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentObligationRepository implements billing.PaymentObligationRepository
// using GORM
type PaymentObligationRepository struct {
	db *gorm.DB
}

// NewPaymentObligationRepository creates a new payment obligation repository
func NewPaymentObligationRepository(db *gorm.DB) *PaymentObligationRepository {
	return &PaymentObligationRepository{db: db}
}

// CreateIfAbsent inserts the obligation unless a row already exists for its
// {tier, parent, month} key. ON CONFLICT DO NOTHING rides on the composite
// unique index, so two concurrent batches racing on the same key resolve in
// the database with exactly one winner.
func (r *PaymentObligationRepository) CreateIfAbsent(ctx context.Context, obligation *billing.PaymentObligation) (bool, error) {
	model := models.PaymentObligationModelFromDomain(obligation)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier"}, {Name: "parent_id"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// FindByID returns the obligation with the given ID, or nil
func (r *PaymentObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentObligation, error) {
	var model models.PaymentObligationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKey returns the obligation for {tier, parent, month}, or nil
func (r *PaymentObligationRepository) FindByKey(ctx context.Context, tier billing.Tier, parentID uuid.UUID, month string) (*billing.PaymentObligation, error) {
	var model models.PaymentObligationModel
	err := r.db.WithContext(ctx).
		Where("tier = ? AND parent_id = ? AND month = ?", tier.String(), parentID, month).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns obligations matching the filter plus the total count for
// pagination
func (r *PaymentObligationRepository) FindAll(ctx context.Context, filter billing.ObligationFilter) ([]billing.PaymentObligation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentObligationModel{})
	query = applyObligationFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.PaymentObligationModel
	if err := query.Order("month DESC, parent_name ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	obligations := make([]billing.PaymentObligation, len(rows))
	for i := range rows {
		obligations[i] = *rows[i].ToDomain()
	}
	return obligations, total, nil
}

// Update persists changes to an existing obligation
func (r *PaymentObligationRepository) Update(ctx context.Context, obligation *billing.PaymentObligation) error {
	model := models.PaymentObligationModelFromDomain(obligation)
	return r.db.WithContext(ctx).Save(model).Error
}

func applyObligationFilter(query *gorm.DB, filter billing.ObligationFilter) *gorm.DB {
	if filter.Tier != nil {
		query = query.Where("tier = ?", filter.Tier.String())
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	return query
}
