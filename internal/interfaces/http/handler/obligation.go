package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
	"github.com/crvcrv26/repo-sub002/internal/infrastructure/scheduler"
	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/middleware"
)

// ObligationHandler handles payment ledger API endpoints
type ObligationHandler struct {
	BaseHandler
	obligationService *appbilling.ObligationService
	generationService *appbilling.GenerationService
	cron              *scheduler.GenerationCronScheduler
}

// NewObligationHandler creates a new ObligationHandler
func NewObligationHandler(
	obligationService *appbilling.ObligationService,
	generationService *appbilling.GenerationService,
	cron *scheduler.GenerationCronScheduler,
) *ObligationHandler {
	return &ObligationHandler{
		obligationService: obligationService,
		generationService: generationService,
		cron:              cron,
	}
}

// ListObligationsRequest represents query filters for the obligation list
type ListObligationsRequest struct {
	Tier            string `form:"tier" binding:"omitempty,oneof=ADMIN SUPER_ADMIN SUPER_SUPER_ADMIN"`
	ParentID        string `form:"parent_id" binding:"omitempty,uuid"`
	Month           string `form:"month" binding:"omitempty,len=7"`
	Status          string `form:"status" binding:"omitempty,oneof=PENDING PAID OVERDUE"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// GenerateRequest represents a request to generate a month's ledger
// @Description Request body for generating payment obligations
type GenerateRequest struct {
	Tier  string `json:"tier" binding:"required,oneof=ADMIN SUPER_ADMIN SUPER_SUPER_ADMIN" example:"ADMIN"`
	Month string `json:"month" binding:"required,len=7" example:"2025-07"`
}

// List godoc
// @Summary      List payment obligations
// @Description  Returns obligations matching the filters. Amounts are recalculated against the current rate on every read.
// @Tags         obligations
// @Produce      json
// @Param        tier query string false "Billing tier" Enums(ADMIN, SUPER_ADMIN, SUPER_SUPER_ADMIN)
// @Param        parent_id query string false "Paying parent account ID" format(uuid)
// @Param        month query string false "Billing month (YYYY-MM)"
// @Param        status query string false "Effective status" Enums(PENDING, PAID, OVERDUE)
// @Param        include_inactive query bool false "Include rows whose parent was deleted"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size (max 200)"
// @Success      200 {object} dto.Response{data=appbilling.ObligationListResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations [get]
func (h *ObligationHandler) List(c *gin.Context) {
	var req ListObligationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.ObligationFilter{
		IncludeInactive: req.IncludeInactive,
		Page:            req.Page,
		PageSize:        req.PageSize,
	}
	if req.Tier != "" {
		tier := billing.Tier(req.Tier)
		filter.Tier = &tier
	}
	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			h.BadRequest(c, "Invalid parent ID")
			return
		}
		filter.ParentID = &parentID
	}
	if req.Month != "" {
		filter.Month = &req.Month
	}
	if req.Status != "" {
		status := billing.ObligationStatus(req.Status)
		filter.Status = &status
	}

	// Field agents and admins only see their own ledger rows.
	if role := getRole(c); role == directory.RoleAdmin || role == directory.RoleFieldAgent {
		accountID, err := getAccountID(c)
		if err != nil {
			h.Unauthorized(c, "Authentication required")
			return
		}
		filter.ParentID = &accountID
	}

	result, err := h.obligationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @Summary      Get a payment obligation
// @Description  Returns a single obligation with recalculated amounts and effective status.
// @Tags         obligations
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.ObligationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations/{id} [get]
func (h *ObligationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}

	obligation, err := h.obligationService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if !h.authorizeObligationAccess(c, obligation) {
		return
	}

	h.Success(c, obligation)
}

// GetCensus godoc
// @Summary      Get the head count behind an obligation
// @Description  Returns the live census for the obligation's tier, parent and billing period.
// @Tags         obligations
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbilling.CensusResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations/{id}/census [get]
func (h *ObligationHandler) GetCensus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID")
		return
	}

	census, err := h.obligationService.GetCensus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, census)
}

// Generate godoc
// @Summary      Generate a month's payment ledger
// @Description  Creates one obligation per eligible parent for the tier and month. Safe to repeat: existing rows are skipped.
// @Tags         obligations
// @Accept       json
// @Produce      json
// @Param        request body GenerateRequest true "Tier and month to generate"
// @Success      200 {object} dto.Response{data=appbilling.GenerationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /billing/obligations/generate [post]
func (h *ObligationHandler) Generate(c *gin.Context) {
	if getRole(c) != directory.RoleSuperSuperAdmin {
		h.Forbidden(c, "Only the platform owner may trigger generation")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	tier := billing.Tier(req.Tier)
	if !tier.IsValid() {
		h.HandleError(c, billing.ErrInvalidTier)
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), tier, req.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// SchedulerStatus godoc
// @Summary      Get the monthly generation scheduler status
// @Tags         obligations
// @Produce      json
// @Success      200 {object} dto.Response{data=map[string]any}
// @Security     BearerAuth
// @Router       /billing/scheduler/status [get]
func (h *ObligationHandler) SchedulerStatus(c *gin.Context) {
	if h.cron == nil {
		h.NotFound(c, "Scheduler is not configured")
		return
	}
	h.Success(c, h.cron.GetStatus())
}

// authorizeObligationAccess hides other parents' rows from accounts at the
// bottom of the hierarchy. Reviewer and audit roles see everything.
func (h *ObligationHandler) authorizeObligationAccess(c *gin.Context, obligation *appbilling.ObligationResponse) bool {
	role := getRole(c)
	if role != directory.RoleAdmin && role != directory.RoleFieldAgent {
		return true
	}

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return false
	}
	if obligation.ParentID != accountID {
		h.Forbidden(c, "You may only view your own obligations")
		return false
	}
	return true
}
