package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// currencyHandler handles HTTP requests for the currency registry.
type currencyHandler struct {
	currencySvc portssvc.CurrencySvcFacade
}

func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{currencySvc: cs}
}

// RegisterCurrencyRoutes registers routes related to currencies.
func RegisterCurrencyRoutes(rg *gin.RouterGroup, cs portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(cs)

	currencies := rg.Group("/currencies")
	{
		currencies.POST("", h.createCurrency)
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrency)
	}
}

func (h *currencyHandler) createCurrency(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	currency, err := h.currencySvc.CreateCurrency(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to create currency", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("currency created", dto.ToCurrencyResponse(currency)))
}

func (h *currencyHandler) getCurrency(c *gin.Context) {
	currency, err := h.currencySvc.GetCurrency(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, "failed to retrieve currency", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToCurrencyResponse(currency)))
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.currencySvc.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, "failed to list currencies", err)
		return
	}

	out := make([]dto.CurrencyResponse, len(currencies))
	for i := range currencies {
		out[i] = dto.ToCurrencyResponse(&currencies[i])
	}
	c.JSON(http.StatusOK, dto.OK("", out))
}
