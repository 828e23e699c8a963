package persistence

import (
	"context"
	"errors"

	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository implements directory.AccountDirectory against the
// accounts table owned by the user-management subsystem. Read-only: every
// method issues SELECTs and nothing else.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get returns the account with the given ID, including soft-deleted
// accounts, or nil when no such account exists
func (r *AccountRepository) Get(ctx context.Context, id uuid.UUID) (*directory.Account, error) {
	var model models.AccountModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListParents returns every non-deleted account holding the given role
func (r *AccountRepository) ListParents(ctx context.Context, role directory.Role) ([]directory.Account, error) {
	var rows []models.AccountModel
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_deleted = ?", role.String(), false).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	accounts := make([]directory.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// CountBillable executes a census query. An account is active for the
// period when it was created on or before the period end and not deleted
// before the period closed; an account deleted inside the period lands in
// the deleted-in-month bucket instead, so the two counts never overlap.
func (r *AccountRepository) CountBillable(ctx context.Context, q directory.CensusQuery) (directory.CensusResult, error) {
	roles := make([]string, len(q.Roles))
	for i, role := range q.Roles {
		roles[i] = role.String()
	}

	base := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("role IN ?", roles)
	if q.ParentID != nil {
		base = base.Where("parent_id = ?", *q.ParentID)
	}

	var active int64
	err := base.Session(&gorm.Session{}).
		Where("created_at <= ?", q.PeriodEnd).
		Where("is_deleted = ? OR deleted_at > ?", false, q.PeriodEnd).
		Count(&active).Error
	if err != nil {
		return directory.CensusResult{}, err
	}

	var deletedInMonth int64
	err = base.Session(&gorm.Session{}).
		Where("is_deleted = ?", true).
		Where("deleted_at >= ? AND deleted_at <= ?", q.PeriodStart, q.PeriodEnd).
		Count(&deletedInMonth).Error
	if err != nil {
		return directory.CensusResult{}, err
	}

	return directory.CensusResult{
		ActiveCount:         active,
		DeletedInMonthCount: deletedInMonth,
	}, nil
}
