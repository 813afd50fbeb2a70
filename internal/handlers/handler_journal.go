package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// journalHandler handles HTTP requests for the journal store. Manual entries
// posted here are adjustments; business events go through the posting routes.
type journalHandler struct {
	journalSvc portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalSvc: js}
}

// RegisterJournalRoutes registers routes related to journal entries.
func RegisterJournalRoutes(rg *gin.RouterGroup, js portssvc.JournalSvcFacade) {
	h := newJournalHandler(js)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.postJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:id", h.getJournal)
		journals.POST("/:id/reverse", h.reverseJournal)
		journals.DELETE("/:id", h.deleteJournal)
	}
}

func (h *journalHandler) postJournal(c *gin.Context) {
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	journal, err := h.journalSvc.Post(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to post journal", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("journal posted", dto.ToJournalResponse(journal)))
}

func (h *journalHandler) getJournal(c *gin.Context) {
	journal, err := h.journalSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to retrieve journal", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToJournalResponse(journal)))
}

func (h *journalHandler) listJournals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, err)
		return
	}

	page, err := h.journalSvc.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, "failed to list journals", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", page))
}

func (h *journalHandler) reverseJournal(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	reversing, err := h.journalSvc.Reverse(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondError(c, "failed to reverse journal", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("journal reversed", dto.ToJournalResponse(reversing)))
}

// deleteJournal is the grace-period delete path for manual entries. Outside
// the window the service refuses and reversal is the only correction.
func (h *journalHandler) deleteJournal(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	if _, err := h.journalSvc.Delete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		respondError(c, "failed to delete journal", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("journal deleted", nil))
}
