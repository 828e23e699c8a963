package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/middleware"
)

// RateHandler handles rate ledger API endpoints
type RateHandler struct {
	BaseHandler
	rateService *appbilling.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *appbilling.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// SetRateRequest represents a request to set a tier's rate
// @Description Request body for setting a new billing rate
type SetRateRequest struct {
	PerUserRate float64 `json:"per_user_rate" binding:"min=0" example:"100"`
	ServiceRate float64 `json:"service_rate" binding:"min=0" example:"3000"`
	Notes       string  `json:"notes" binding:"max=500" example:"FY26 price revision"`
}

// SetRate godoc
// @Summary      Set the billing rate for a tier
// @Description  Creates a new rate entry and deactivates the previous one. New rates apply to all unpaid obligations on read.
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        tier path string true "Billing tier" Enums(ADMIN, SUPER_ADMIN, SUPER_SUPER_ADMIN)
// @Param        request body SetRateRequest true "Rate to set"
// @Success      201 {object} dto.Response{data=appbilling.RateEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/rates/{tier} [post]
func (h *RateHandler) SetRate(c *gin.Context) {
	tier := billing.Tier(c.Param("tier"))
	if !tier.IsValid() {
		h.HandleError(c, billing.ErrInvalidTier)
		return
	}

	if getRole(c) != directory.RoleSuperSuperAdmin {
		h.Forbidden(c, "Only the platform owner may set rates")
		return
	}

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rate, err := h.rateService.SetRate(c.Request.Context(), appbilling.SetRateRequest{
		Tier:        tier,
		PerUserRate: decimal.NewFromFloat(req.PerUserRate),
		ServiceRate: decimal.NewFromFloat(req.ServiceRate),
		Notes:       req.Notes,
		CreatedBy:   accountID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, rate)
}

// GetActiveRate godoc
// @Summary      Get the active rate for a tier
// @Tags         rates
// @Produce      json
// @Param        tier path string true "Billing tier" Enums(ADMIN, SUPER_ADMIN, SUPER_SUPER_ADMIN)
// @Success      200 {object} dto.Response{data=appbilling.RateEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/rates/{tier}/active [get]
func (h *RateHandler) GetActiveRate(c *gin.Context) {
	tier := billing.Tier(c.Param("tier"))
	if !tier.IsValid() {
		h.HandleError(c, billing.ErrInvalidTier)
		return
	}

	rate, err := h.rateService.GetActiveRate(c.Request.Context(), tier)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rate)
}

// ListRates godoc
// @Summary      List a tier's rate history
// @Description  Returns all rate entries for the tier, newest first. The active entry is flagged.
// @Tags         rates
// @Produce      json
// @Param        tier path string true "Billing tier" Enums(ADMIN, SUPER_ADMIN, SUPER_SUPER_ADMIN)
// @Success      200 {object} dto.Response{data=[]appbilling.RateEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/rates/{tier} [get]
func (h *RateHandler) ListRates(c *gin.Context) {
	tier := billing.Tier(c.Param("tier"))
	if !tier.IsValid() {
		h.HandleError(c, billing.ErrInvalidTier)
		return
	}

	rates, err := h.rateService.ListRates(c.Request.Context(), tier)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rates)
}
