package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// postingHandler handles HTTP requests for business events: enrollments,
// payments, waivers, charges, refunds and their corrections.
type postingHandler struct {
	postingSvc portssvc.PostingSvcFacade
}

func newPostingHandler(ps portssvc.PostingSvcFacade) *postingHandler {
	return &postingHandler{postingSvc: ps}
}

// RegisterPostingRoutes registers routes for the posting orchestrator.
func RegisterPostingRoutes(rg *gin.RouterGroup, ps portssvc.PostingSvcFacade) {
	h := newPostingHandler(ps)

	postings := rg.Group("/postings")
	{
		postings.POST("/enrollments", h.enrollStudent)
		postings.POST("/payments", h.recordPayment)
		postings.POST("/waivers", h.waiveFee)
		postings.POST("/uniform-sales", h.sellUniform)
		postings.POST("/transport-charges", h.chargeTransport)
		postings.POST("/refunds", h.refundPayment)
		postings.POST("/adjustments", h.postAdjustment)
		postings.POST("/:journalID/reverse", h.reversePosting)
		postings.DELETE("/enrollments/:id", h.cancelEnrollment)
	}
}

func (h *postingHandler) actor(c *gin.Context) (string, bool) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
	}
	return actorID, ok
}

func (h *postingHandler) enrollStudent(c *gin.Context) {
	var req dto.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.EnrollStudent(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to enroll student", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("student enrolled", resp))
}

func (h *postingHandler) recordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.RecordPayment(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to record payment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("payment recorded", resp))
}

func (h *postingHandler) waiveFee(c *gin.Context) {
	var req dto.WaiveFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.WaiveFee(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to waive fee", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("fee waived", resp))
}

func (h *postingHandler) sellUniform(c *gin.Context) {
	var req dto.ChargeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.SellUniform(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to record uniform sale", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("uniform sale recorded", resp))
}

func (h *postingHandler) chargeTransport(c *gin.Context) {
	var req dto.ChargeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.ChargeTransport(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to charge transport", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("transport charged", resp))
}

func (h *postingHandler) refundPayment(c *gin.Context) {
	var req dto.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.RefundPayment(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to refund payment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("payment refunded", resp))
}

func (h *postingHandler) postAdjustment(c *gin.Context) {
	var req dto.PostAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.PostAdjustment(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to post adjustment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("adjustment posted", resp))
}

func (h *postingHandler) reversePosting(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.ReversePosting(c.Request.Context(), c.Param("journalID"), actorID)
	if err != nil {
		respondError(c, "failed to reverse posting", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("posting reversed", resp))
}

func (h *postingHandler) cancelEnrollment(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.postingSvc.CancelEnrollment(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondError(c, "failed to cancel enrollment", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("enrollment cancelled", resp))
}
