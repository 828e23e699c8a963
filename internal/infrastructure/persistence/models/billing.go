package models

import (
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateEntryModel is the persistence model for the RateEntry aggregate root.
type RateEntryModel struct {
	AggregateModel
	Tier        string          `gorm:"type:varchar(30);not null;index:idx_rate_tier_active"`
	PerUserRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ServiceRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive    bool            `gorm:"not null;default:true;index:idx_rate_tier_active"`
	Notes       string          `gorm:"type:text"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (RateEntryModel) TableName() string {
	return "rate_entries"
}

// ToDomain converts the persistence model to a domain RateEntry
func (m *RateEntryModel) ToDomain() *billing.RateEntry {
	return &billing.RateEntry{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Tier:              billing.Tier(m.Tier),
		PerUserRate:       m.PerUserRate,
		ServiceRate:       m.ServiceRate,
		IsActive:          m.IsActive,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
	}
}

// RateEntryModelFromDomain creates a model from a domain RateEntry
func RateEntryModelFromDomain(e *billing.RateEntry) *RateEntryModel {
	m := &RateEntryModel{
		Tier:        e.Tier.String(),
		PerUserRate: e.PerUserRate,
		ServiceRate: e.ServiceRate,
		IsActive:    e.IsActive,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

// PaymentObligationModel is the persistence model for the PaymentObligation
// aggregate root. The composite unique index over (tier, parent_id, month)
// is what makes generation idempotent under concurrent batches: the insert
// either lands or hits the constraint, with no read-then-write window.
type PaymentObligationModel struct {
	AggregateModel
	Tier       string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_obligation_tier_parent_month,priority:1"`
	ParentID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_obligation_tier_parent_month,priority:2;index"`
	ParentName string    `gorm:"type:varchar(200);not null"`
	Month      string    `gorm:"type:varchar(7);not null;uniqueIndex:idx_obligation_tier_parent_month,priority:3;index"`

	UserCount        int64 `gorm:"not null"`
	DeletedUserCount int64 `gorm:"not null;default:0"`

	PerUserRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ServiceRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	IsProrated          bool            `gorm:"not null;default:false"`
	ProratedDays        int             `gorm:"not null;default:0"`
	TotalDaysInMonth    int             `gorm:"not null"`
	ProratedServiceRate decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	UserAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	PeriodStart time.Time `gorm:"not null"`
	PeriodEnd   time.Time `gorm:"not null"`
	DueDate     time.Time `gorm:"not null;index"`

	Status     string           `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	PaidDate   *time.Time
	ProofRef   *string `gorm:"type:varchar(100)"`

	IsActive bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PaymentObligationModel) TableName() string {
	return "payment_obligations"
}

// ToDomain converts the persistence model to a domain PaymentObligation
func (m *PaymentObligationModel) ToDomain() *billing.PaymentObligation {
	return &billing.PaymentObligation{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Tier:                billing.Tier(m.Tier),
		ParentID:            m.ParentID,
		ParentName:          m.ParentName,
		Month:               m.Month,
		UserCount:           m.UserCount,
		DeletedUserCount:    m.DeletedUserCount,
		PerUserRate:         m.PerUserRate,
		ServiceRate:         m.ServiceRate,
		IsProrated:          m.IsProrated,
		ProratedDays:        m.ProratedDays,
		TotalDaysInMonth:    m.TotalDaysInMonth,
		ProratedServiceRate: m.ProratedServiceRate,
		UserAmount:          m.UserAmount,
		TotalAmount:         m.TotalAmount,
		PeriodStart:         m.PeriodStart,
		PeriodEnd:           m.PeriodEnd,
		DueDate:             m.DueDate,
		Status:              billing.ObligationStatus(m.Status),
		PaidAmount:          m.PaidAmount,
		PaidDate:            m.PaidDate,
		ProofRef:            m.ProofRef,
		IsActive:            m.IsActive,
	}
}

// PaymentObligationModelFromDomain creates a model from a domain PaymentObligation
func PaymentObligationModelFromDomain(o *billing.PaymentObligation) *PaymentObligationModel {
	m := &PaymentObligationModel{
		Tier:                o.Tier.String(),
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
		Status:              o.Status.String(),
		PaidAmount:          o.PaidAmount,
		PaidDate:            o.PaidDate,
		ProofRef:            o.ProofRef,
		IsActive:            o.IsActive,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// PaymentProofModel is the persistence model for the PaymentProof aggregate
// root. The unique index on payment_id enforces the one-proof-per-obligation
// rule at the storage layer.
type PaymentProofModel struct {
	AggregateModel
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_proof_payment"`
	SubmittedBy uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProofType   string          `gorm:"type:varchar(30);not null"`
	Payload     string          `gorm:"type:text;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ReviewedBy  *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt  *time.Time
	AdminNotes  string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentProofModel) TableName() string {
	return "payment_proofs"
}

// ToDomain converts the persistence model to a domain PaymentProof
func (m *PaymentProofModel) ToDomain() *billing.PaymentProof {
	return &billing.PaymentProof{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PaymentID:         m.PaymentID,
		SubmittedBy:       m.SubmittedBy,
		ProofType:         billing.ProofType(m.ProofType),
		Payload:           m.Payload,
		Amount:            m.Amount,
		PaymentDate:       m.PaymentDate,
		Status:            billing.ProofStatus(m.Status),
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		AdminNotes:        m.AdminNotes,
	}
}

// PaymentProofModelFromDomain creates a model from a domain PaymentProof
func PaymentProofModelFromDomain(p *billing.PaymentProof) *PaymentProofModel {
	m := &PaymentProofModel{
		PaymentID:   p.PaymentID,
		SubmittedBy: p.SubmittedBy,
		ProofType:   p.ProofType.String(),
		Payload:     p.Payload,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Status:      p.Status.String(),
		ReviewedBy:  p.ReviewedBy,
		ReviewedAt:  p.ReviewedAt,
		AdminNotes:  p.AdminNotes,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
