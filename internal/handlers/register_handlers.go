package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/middleware"
	"github.com/openedu/school_ledger_app/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) error {
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return err
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	setupAPIV1Routes(r, services, limiterInstance)
	setupAdminRoutes(r, services)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations.
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer, limiterInstance *limiter.Limiter) {
	v1 := r.Group("/api/v1", middleware.RateLimit(limiterInstance), middleware.ActorMiddleware())

	RegisterAccountRoutes(v1, services.Account, services.Balance, services.Journal)
	RegisterJournalRoutes(v1, services.Journal)
	RegisterStudentRoutes(v1, services.StudentLedger)
	RegisterPostingRoutes(v1, services.Posting)
	RegisterCurrencyRoutes(v1, services.Currency)
	RegisterExchangeRateRoutes(v1, services.ExchangeRate)
}

// setupAdminRoutes configures operator-only routes outside the v1 surface.
func setupAdminRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	admin := r.Group("/admin", middleware.ActorMiddleware())
	RegisterRepairRoutes(admin, services.Reconciliation)
}
