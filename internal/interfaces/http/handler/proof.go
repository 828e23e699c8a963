package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/middleware"
)

// ProofHandler handles payment proof API endpoints
type ProofHandler struct {
	BaseHandler
	proofService *appbilling.ProofService
}

// NewProofHandler creates a new ProofHandler
func NewProofHandler(proofService *appbilling.ProofService) *ProofHandler {
	return &ProofHandler{proofService: proofService}
}

// SubmitProofRequest represents a request to submit payment evidence
// @Description Request body for submitting a payment proof
type SubmitProofRequest struct {
	ProofType   string  `json:"proof_type" binding:"required,oneof=SCREENSHOT TRANSACTION_NUMBER" example:"TRANSACTION_NUMBER"`
	Payload     string  `json:"payload" binding:"required,max=2000" example:"UTR-202507-558812"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"3500"`
	PaymentDate string  `json:"payment_date" binding:"required,datetime=2006-01-02" example:"2025-07-04"`
}

// ReviewProofRequest represents a reviewer's verdict on a proof
// @Description Request body for reviewing a payment proof
type ReviewProofRequest struct {
	Decision   string `json:"decision" binding:"required,oneof=APPROVED REJECTED" example:"APPROVED"`
	AdminNotes string `json:"admin_notes" binding:"max=1000" example:"Verified against bank statement"`
}

// Submit godoc
// @Summary      Submit payment proof for an obligation
// @Description  Attaches evidence of payment to a pending obligation. A rejected proof is replaced in place; a pending or approved proof blocks resubmission.
// @Tags         proofs
// @Accept       json
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        request body SubmitProofRequest true "Payment evidence"
// @Success      201 {object} dto.Response{data=appbilling.ProofResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations/{id}/proof [post]
func (h *ProofHandler) Submit(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	paymentDate, err := time.ParseInLocation("2006-01-02", req.PaymentDate, time.UTC)
	if err != nil {
		h.BadRequest(c, "Invalid payment date")
		return
	}

	proof, err := h.proofService.Submit(c.Request.Context(), appbilling.SubmitProofRequest{
		PaymentID:   paymentID,
		SubmittedBy: accountID,
		ProofType:   billing.ProofType(req.ProofType),
		Payload:     req.Payload,
		Amount:      decimal.NewFromFloat(req.Amount),
		PaymentDate: paymentDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, proof)
}

// Review godoc
// @Summary      Review a payment proof
// @Description  Applies an approve or reject verdict. Approval marks the obligation paid in the same transaction; a reviewed proof cannot be reviewed again.
// @Tags         proofs
// @Accept       json
// @Produce      json
// @Param        id path string true "Proof ID" format(uuid)
// @Param        request body ReviewProofRequest true "Review verdict"
// @Success      200 {object} dto.Response{data=appbilling.ProofResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/proofs/{id}/review [put]
func (h *ProofHandler) Review(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid proof ID")
		return
	}

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ReviewProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	proof, err := h.proofService.Review(c.Request.Context(), appbilling.ReviewProofRequest{
		ProofID:    proofID,
		ReviewerID: accountID,
		Decision:   billing.ReviewDecision(req.Decision),
		AdminNotes: req.AdminNotes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proof)
}

// Get godoc
// @Summary      Get a payment proof
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Proof ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.ProofResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/proofs/{id} [get]
func (h *ProofHandler) Get(c *gin.Context) {
	proofID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid proof ID")
		return
	}

	proof, err := h.proofService.GetProof(c.Request.Context(), proofID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proof)
}

// GetForObligation godoc
// @Summary      Get the proof attached to an obligation
// @Tags         proofs
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.ProofResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations/{id}/proof [get]
func (h *ProofHandler) GetForObligation(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}

	proof, err := h.proofService.GetProofForPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, proof)
}
