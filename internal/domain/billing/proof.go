package billing

import (
	"strings"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProofType identifies what kind of payment evidence was submitted
type ProofType string

const (
	// ProofTypeScreenshot carries an opaque reference to an uploaded
	// screenshot; the file itself lives in object storage
	ProofTypeScreenshot ProofType = "SCREENSHOT"
	// ProofTypeTransactionNumber carries a bank/UPI transaction number
	ProofTypeTransactionNumber ProofType = "TRANSACTION_NUMBER"
)

// IsValid checks if the proof type is valid
func (p ProofType) IsValid() bool {
	switch p {
	case ProofTypeScreenshot, ProofTypeTransactionNumber:
		return true
	}
	return false
}

// String returns the string representation of ProofType
func (p ProofType) String() string {
	return string(p)
}

// ProofStatus represents the review state of a payment proof
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "PENDING"
	ProofStatusApproved ProofStatus = "APPROVED"
	ProofStatusRejected ProofStatus = "REJECTED"
)

// IsValid checks if the status is a valid ProofStatus
func (s ProofStatus) IsValid() bool {
	switch s {
	case ProofStatusPending, ProofStatusApproved, ProofStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ProofStatus
func (s ProofStatus) String() string {
	return string(s)
}

// ReviewDecision is a reviewer's verdict on a proof
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "APPROVED"
	ReviewDecisionRejected ReviewDecision = "REJECTED"
)

// IsValid checks if the decision is valid
func (d ReviewDecision) IsValid() bool {
	return d == ReviewDecisionApproved || d == ReviewDecisionRejected
}

// PaymentProof is the proof-of-payment attached to a PaymentObligation.
// One active (non-rejected) proof exists per obligation; a rejected proof
// is overwritten in place on resubmission rather than duplicated.
type PaymentProof struct {
	shared.BaseAggregateRoot
	PaymentID   uuid.UUID       `json:"payment_id"`
	SubmittedBy uuid.UUID       `json:"submitted_by"`
	ProofType   ProofType       `json:"proof_type"`
	Payload     string          `json:"payload"` // object-storage ref or transaction number
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Status      ProofStatus     `json:"status"`
	ReviewedBy  *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time      `json:"reviewed_at,omitempty"`
	AdminNotes  string          `json:"admin_notes"`
}

func validateProofPayload(proofType ProofType, payload string) error {
	if !proofType.IsValid() {
		return shared.NewDomainError("INVALID_PROOF_TYPE", "Unknown proof type")
	}
	if strings.TrimSpace(payload) == "" {
		return ErrMissingRequiredField
	}
	return nil
}

// NewPaymentProof creates a pending proof for a payment obligation
func NewPaymentProof(
	paymentID uuid.UUID,
	submittedBy uuid.UUID,
	proofType ProofType,
	payload string,
	amount decimal.Decimal,
	paymentDate time.Time,
) (*PaymentProof, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}
	if err := validateProofPayload(proofType, payload); err != nil {
		return nil, err
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Paid amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	return &PaymentProof{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentID:         paymentID,
		SubmittedBy:       submittedBy,
		ProofType:         proofType,
		Payload:           payload,
		Amount:            amount,
		PaymentDate:       paymentDate,
		Status:            ProofStatusPending,
	}, nil
}

// Approve marks the proof approved. Fails once the proof has left PENDING.
func (p *PaymentProof) Approve(reviewedBy uuid.UUID, adminNotes string) error {
	if p.Status != ProofStatusPending {
		return ErrAlreadyReviewed
	}
	if reviewedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewing user ID is required")
	}
	now := time.Now()
	p.Status = ProofStatusApproved
	p.ReviewedBy = &reviewedBy
	p.ReviewedAt = &now
	p.AdminNotes = adminNotes
	p.IncrementVersion()
	return nil
}

// Reject marks the proof rejected, leaving the obligation pending and the
// proof open for in-place resubmission.
func (p *PaymentProof) Reject(reviewedBy uuid.UUID, adminNotes string) error {
	if p.Status != ProofStatusPending {
		return ErrAlreadyReviewed
	}
	if reviewedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Reviewing user ID is required")
	}
	now := time.Now()
	p.Status = ProofStatusRejected
	p.ReviewedBy = &reviewedBy
	p.ReviewedAt = &now
	p.AdminNotes = adminNotes
	p.IncrementVersion()
	return nil
}

// Resubmit overwrites a rejected proof with fresh evidence and returns it
// to PENDING. Only rejected proofs may be resubmitted.
func (p *PaymentProof) Resubmit(submittedBy uuid.UUID, proofType ProofType, payload string, amount decimal.Decimal, paymentDate time.Time) error {
	if p.Status != ProofStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "Only a rejected proof can be resubmitted")
	}
	if err := validateProofPayload(proofType, payload); err != nil {
		return err
	}
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount must be positive")
	}
	p.SubmittedBy = submittedBy
	p.ProofType = proofType
	p.Payload = payload
	p.Amount = amount
	p.PaymentDate = paymentDate
	p.Status = ProofStatusPending
	p.ReviewedBy = nil
	p.ReviewedAt = nil
	p.AdminNotes = ""
	p.IncrementVersion()
	return nil
}
