package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// exchangeRateHandler handles HTTP requests for stored exchange rates.
type exchangeRateHandler struct {
	exchangeRateSvc portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(es portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{exchangeRateSvc: es}
}

// RegisterExchangeRateRoutes registers routes related to exchange rates.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, es portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(es)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("/:from/:to", h.getEffectiveRate)
	}
}

func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	rate, err := h.exchangeRateSvc.CreateExchangeRate(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to store exchange rate", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("exchange rate stored", dto.ToExchangeRateResponse(rate)))
}

func (h *exchangeRateHandler) getEffectiveRate(c *gin.Context) {
	on := time.Now().UTC()
	if raw := c.Query("on"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		on = parsed
	}

	rate, err := h.exchangeRateSvc.GetEffectiveRate(c.Request.Context(), c.Param("from"), c.Param("to"), on)
	if err != nil {
		respondError(c, "failed to retrieve exchange rate", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToExchangeRateResponse(rate)))
}
