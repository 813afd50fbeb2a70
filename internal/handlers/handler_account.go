package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// accountHandler handles HTTP requests for the chart of accounts.
type accountHandler struct {
	accountSvc portssvc.AccountSvcFacade
	balanceSvc portssvc.BalanceSvcFacade
	journalSvc portssvc.JournalSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvcFacade, js portssvc.JournalSvcFacade) *accountHandler {
	return &accountHandler{accountSvc: as, balanceSvc: bs, journalSvc: js}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, bs portssvc.BalanceSvcFacade, js portssvc.JournalSvcFacade) {
	h := newAccountHandler(as, bs, js)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.DELETE("/:id", h.deactivateAccount)
		accounts.GET("/:id/balances", h.getAccountBalances)
		accounts.GET("/:id/lines", h.listAccountLines)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	account, err := h.accountSvc.CreateAccount(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to create account", err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK("account created", dto.ToAccountResponse(account)))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountSvc.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to retrieve account", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToAccountResponse(account)))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accountSvc.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, "failed to list accounts", err)
		return
	}

	out := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, dto.OK("", out))
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	account, err := h.accountSvc.UpdateAccount(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		respondError(c, "failed to update account", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("account updated", dto.ToAccountResponse(account)))
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	if err := h.accountSvc.DeactivateAccount(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, "failed to deactivate account", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("account deactivated", nil))
}

func (h *accountHandler) getAccountBalances(c *gin.Context) {
	accountID := c.Param("id")
	if _, err := h.accountSvc.GetAccountByID(c.Request.Context(), accountID); err != nil {
		respondError(c, "failed to retrieve account", err)
		return
	}

	balances, err := h.balanceSvc.GetBalances(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, "failed to retrieve balances", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToAccountBalanceResponses(balances)))
}

func (h *accountHandler) listAccountLines(c *gin.Context) {
	var params dto.ListLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, err)
		return
	}

	page, err := h.journalSvc.ListLinesByAccount(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, "failed to list account lines", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", page))
}
