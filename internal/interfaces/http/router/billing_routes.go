package router

import (
	"github.com/gin-gonic/gin"

	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/handler"
)

// BillingRoutes registers the billing API surface: rate ledger, payment
// obligations, payment proofs and the generation scheduler.
type BillingRoutes struct {
	rates       *handler.RateHandler
	obligations *handler.ObligationHandler
	proofs      *handler.ProofHandler
}

// NewBillingRoutes creates a BillingRoutes registrar
func NewBillingRoutes(
	rates *handler.RateHandler,
	obligations *handler.ObligationHandler,
	proofs *handler.ProofHandler,
) *BillingRoutes {
	return &BillingRoutes{
		rates:       rates,
		obligations: obligations,
		proofs:      proofs,
	}
}

// RegisterRoutes implements RouteRegistrar
func (br *BillingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")

	rates := billing.Group("/rates")
	{
		rates.POST("/:tier", br.rates.SetRate)
		rates.GET("/:tier", br.rates.ListRates)
		rates.GET("/:tier/active", br.rates.GetActiveRate)
	}

	obligations := billing.Group("/obligations")
	{
		obligations.GET("", br.obligations.List)
		obligations.POST("/generate", br.obligations.Generate)
		obligations.GET("/:id", br.obligations.Get)
		obligations.GET("/:id/census", br.obligations.GetCensus)
		obligations.POST("/:id/proof", br.proofs.Submit)
		obligations.GET("/:id/proof", br.proofs.GetForObligation)
	}

	proofs := billing.Group("/proofs")
	{
		proofs.GET("/:id", br.proofs.Get)
		proofs.PUT("/:id/review", br.proofs.Review)
	}

	billing.GET("/scheduler/status", br.obligations.SchedulerStatus)
}

// SystemRoutes registers system and health endpoints
type SystemRoutes struct {
	system *handler.SystemHandler
}

// NewSystemRoutes creates a SystemRoutes registrar
func NewSystemRoutes(system *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{system: system}
}

// RegisterRoutes implements RouteRegistrar
func (sr *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", sr.system.GetSystemInfo)
		system.GET("/ping", sr.system.Ping)
	}
}
