package billing

import (
	"context"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProofService runs the payment proof workflow: the paying parent submits
// evidence, the tier's reviewer approves or rejects it. At most one proof
// row exists per obligation; a rejected proof is overwritten in place on
// resubmission. Approval flips the obligation to paid in the same
// transaction as the proof update.
type ProofService struct {
	proofRepo      billing.PaymentProofRepository
	obligationRepo billing.PaymentObligationRepository
	dir            directory.AccountDirectory
	log            *zap.Logger
}

// NewProofService creates a new ProofService
func NewProofService(
	proofRepo billing.PaymentProofRepository,
	obligationRepo billing.PaymentObligationRepository,
	dir directory.AccountDirectory,
	log *zap.Logger,
) *ProofService {
	return &ProofService{
		proofRepo:      proofRepo,
		obligationRepo: obligationRepo,
		dir:            dir,
		log:            log,
	}
}

// SubmitProofRequest carries the evidence for a payment
type SubmitProofRequest struct {
	PaymentID   uuid.UUID         `json:"-"`
	SubmittedBy uuid.UUID         `json:"-"`
	ProofType   billing.ProofType `json:"proof_type"`
	Payload     string            `json:"payload"`
	Amount      decimal.Decimal   `json:"amount"`
	PaymentDate time.Time         `json:"payment_date"`
}

// ReviewProofRequest carries a reviewer's verdict on a proof
type ReviewProofRequest struct {
	ProofID    uuid.UUID              `json:"-"`
	ReviewerID uuid.UUID              `json:"-"`
	Decision   billing.ReviewDecision `json:"decision"`
	AdminNotes string                 `json:"admin_notes"`
}

// ProofResponse represents a payment proof in API responses
type ProofResponse struct {
	ID          uuid.UUID           `json:"id"`
	PaymentID   uuid.UUID           `json:"payment_id"`
	SubmittedBy uuid.UUID           `json:"submitted_by"`
	ProofType   billing.ProofType   `json:"proof_type"`
	Payload     string              `json:"payload"`
	Amount      decimal.Decimal     `json:"amount"`
	PaymentDate time.Time           `json:"payment_date"`
	Status      billing.ProofStatus `json:"status"`
	ReviewedBy  *uuid.UUID          `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `json:"reviewed_at,omitempty"`
	AdminNotes  string              `json:"admin_notes,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toProofResponse(p *billing.PaymentProof) *ProofResponse {
	return &ProofResponse{
		ID:          p.ID,
		PaymentID:   p.PaymentID,
		SubmittedBy: p.SubmittedBy,
		ProofType:   p.ProofType,
		Payload:     p.Payload,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Status:      p.Status,
		ReviewedBy:  p.ReviewedBy,
		ReviewedAt:  p.ReviewedAt,
		AdminNotes:  p.AdminNotes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Submit attaches payment evidence to an obligation. Only the obligation's
// paying parent may submit. A pending proof blocks a second submission; a
// rejected proof is resubmitted in place.
func (s *ProofService) Submit(ctx context.Context, req SubmitProofRequest) (*ProofResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound
	}
	if req.SubmittedBy != obligation.ParentID {
		return nil, shared.ErrForbidden
	}
	if obligation.Status == billing.ObligationStatusPaid {
		return nil, billing.ErrAlreadyApproved
	}

	existing, err := s.proofRepo.FindByPaymentID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case billing.ProofStatusApproved:
			return nil, billing.ErrAlreadyApproved
		case billing.ProofStatusPending:
			return nil, shared.ErrAlreadyExists
		case billing.ProofStatusRejected:
			if err := existing.Resubmit(req.SubmittedBy, req.ProofType, req.Payload, req.Amount, req.PaymentDate); err != nil {
				return nil, err
			}
			if err := s.proofRepo.Save(ctx, existing); err != nil {
				return nil, err
			}
			s.log.Info("Payment proof resubmitted",
				zap.String("proof_id", existing.ID.String()),
				zap.String("payment_id", req.PaymentID.String()),
			)
			return toProofResponse(existing), nil
		}
	}

	proof, err := billing.NewPaymentProof(req.PaymentID, req.SubmittedBy, req.ProofType, req.Payload, req.Amount, req.PaymentDate)
	if err != nil {
		return nil, err
	}
	if err := s.proofRepo.Save(ctx, proof); err != nil {
		return nil, err
	}

	s.log.Info("Payment proof submitted",
		zap.String("proof_id", proof.ID.String()),
		zap.String("payment_id", req.PaymentID.String()),
		zap.String("proof_type", proof.ProofType.String()),
	)

	return toProofResponse(proof), nil
}

// Review applies a reviewer's verdict. Approval marks the obligation paid
// in the same transaction as the proof update; rejection leaves the
// obligation pending and the proof open for resubmission.
func (s *ProofService) Review(ctx context.Context, req ReviewProofRequest) (*ProofResponse, error) {
	if !req.Decision.IsValid() {
		return nil, shared.ErrInvalidInput
	}

	proof, err := s.proofRepo.FindByID(ctx, req.ProofID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, shared.ErrNotFound
	}

	obligation, err := s.obligationRepo.FindByID(ctx, proof.PaymentID)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound
	}

	if err := s.authorizeReviewer(ctx, req.ReviewerID, obligation); err != nil {
		return nil, err
	}

	switch req.Decision {
	case billing.ReviewDecisionApproved:
		if err := proof.Approve(req.ReviewerID, req.AdminNotes); err != nil {
			return nil, err
		}
		proofRef := proof.ID.String()
		if err := obligation.MarkPaid(proof.Amount, proof.PaymentDate, proofRef); err != nil {
			return nil, err
		}
		if err := s.proofRepo.SaveReview(ctx, proof, obligation); err != nil {
			return nil, err
		}
	case billing.ReviewDecisionRejected:
		if err := proof.Reject(req.ReviewerID, req.AdminNotes); err != nil {
			return nil, err
		}
		if err := s.proofRepo.Save(ctx, proof); err != nil {
			return nil, err
		}
	}

	s.log.Info("Payment proof reviewed",
		zap.String("proof_id", proof.ID.String()),
		zap.String("payment_id", proof.PaymentID.String()),
		zap.String("decision", string(req.Decision)),
	)

	return toProofResponse(proof), nil
}

// GetProof returns a proof by ID
func (s *ProofService) GetProof(ctx context.Context, id uuid.UUID) (*ProofResponse, error) {
	proof, err := s.proofRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, shared.ErrNotFound
	}
	return toProofResponse(proof), nil
}

// GetProofForPayment returns the proof attached to an obligation, if any
func (s *ProofService) GetProofForPayment(ctx context.Context, paymentID uuid.UUID) (*ProofResponse, error) {
	proof, err := s.proofRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if proof == nil {
		return nil, shared.ErrNotFound
	}
	return toProofResponse(proof), nil
}

// authorizeReviewer checks that the reviewer holds the tier's reviewer role
// and, below the top of the hierarchy, actually supervises the paying
// parent. The root account reviews its own tier's proofs.
func (s *ProofService) authorizeReviewer(ctx context.Context, reviewerID uuid.UUID, obligation *billing.PaymentObligation) error {
	reviewer, err := s.dir.Get(ctx, reviewerID)
	if err != nil {
		return err
	}
	if reviewer == nil || reviewer.IsDeleted {
		return shared.ErrForbidden
	}

	rules := obligation.Tier.Rules()
	if reviewer.Role != rules.ReviewerRole {
		return shared.ErrForbidden
	}
	if reviewer.Role == directory.RoleSuperSuperAdmin {
		return nil
	}

	payer, err := s.dir.Get(ctx, obligation.ParentID)
	if err != nil {
		return err
	}
	if payer == nil || payer.ParentID == nil || *payer.ParentID != reviewer.ID {
		return shared.ErrForbidden
	}
	return nil
}
