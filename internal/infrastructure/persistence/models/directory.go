package models

import (
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/google/uuid"
)

// AccountModel is the persistence model for directory accounts. The table
// is owned by the user-management subsystem; billing reads it and never
// writes.
type AccountModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Role      string     `gorm:"type:varchar(30);not null;index"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	IsDeleted bool       `gorm:"not null;default:false;index"`
	DeletedAt *time.Time `gorm:"index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *directory.Account {
	return &directory.Account{
		ID:        m.ID,
		Name:      m.Name,
		Role:      directory.Role(m.Role),
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
		IsDeleted: m.IsDeleted,
		DeletedAt: m.DeletedAt,
	}
}
