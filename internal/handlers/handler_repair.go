package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
)

// repairHandler exposes the reconciliation utility: the integrity check and
// the idempotent full rebuild of derived balances.
type repairHandler struct {
	reconciliationSvc portssvc.ReconciliationSvcFacade
}

func newRepairHandler(rs portssvc.ReconciliationSvcFacade) *repairHandler {
	return &repairHandler{reconciliationSvc: rs}
}

// RegisterRepairRoutes registers the operator reconciliation routes.
func RegisterRepairRoutes(rg *gin.RouterGroup, rs portssvc.ReconciliationSvcFacade) {
	h := newRepairHandler(rs)

	rg.GET("/integrity", h.checkIntegrity)
	rg.POST("/repair", h.repairAll)
}

func (h *repairHandler) checkIntegrity(c *gin.Context) {
	report, err := h.reconciliationSvc.CheckIntegrity(c.Request.Context())
	if err != nil {
		respondError(c, "integrity check failed", err)
		return
	}
	if !report.Clean() {
		c.JSON(http.StatusConflict, dto.Envelope{Success: false, Message: "balance drift detected", Data: report})
		return
	}
	c.JSON(http.StatusOK, dto.OK("no drift detected", report))
}

func (h *repairHandler) repairAll(c *gin.Context) {
	result, err := h.reconciliationSvc.RepairAll(c.Request.Context())
	if err != nil {
		respondError(c, "repair failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("derived balances rebuilt", result))
}
