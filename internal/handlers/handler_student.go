package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// studentHandler handles HTTP requests for the student sub-ledger.
type studentHandler struct {
	studentSvc portssvc.StudentLedgerSvcFacade
}

func newStudentHandler(ss portssvc.StudentLedgerSvcFacade) *studentHandler {
	return &studentHandler{studentSvc: ss}
}

// RegisterStudentRoutes registers routes related to students and their
// sub-ledger.
func RegisterStudentRoutes(rg *gin.RouterGroup, ss portssvc.StudentLedgerSvcFacade) {
	h := newStudentHandler(ss)

	students := rg.Group("/students")
	{
		students.POST("", h.createStudent)
		students.GET("/:id", h.getStudent)
		students.GET("/:id/balance", h.getBalance)
		students.GET("/:id/transactions", h.listTransactions)
		students.POST("/:id/recalculate", h.recalculate)
	}

	rg.POST("/student-transactions/:id/reverse", h.reverseTransaction)
}

func (h *studentHandler) createStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	student, err := h.studentSvc.CreateStudent(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, "failed to create student", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("student created", dto.ToStudentResponse(student)))
}

func (h *studentHandler) getStudent(c *gin.Context) {
	student, err := h.studentSvc.GetStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to retrieve student", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToStudentResponse(student)))
}

func (h *studentHandler) getBalance(c *gin.Context) {
	balance, err := h.studentSvc.GetBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to retrieve balance", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", dto.ToStudentBalanceResponse(balance)))
}

func (h *studentHandler) listTransactions(c *gin.Context) {
	var params dto.ListStudentTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBadRequest(c, err)
		return
	}

	page, err := h.studentSvc.ListTransactions(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		respondError(c, "failed to list transactions", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("", page))
}

func (h *studentHandler) recalculate(c *gin.Context) {
	balance, err := h.studentSvc.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "failed to recalculate balance", err)
		return
	}
	c.JSON(http.StatusOK, dto.OK("balance recalculated", dto.ToStudentBalanceResponse(balance)))
}

func (h *studentHandler) reverseTransaction(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Fail("unauthorized", "missing actor"))
		return
	}

	txn, err := h.studentSvc.Reverse(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondError(c, "failed to reverse transaction", err)
		return
	}
	c.JSON(http.StatusCreated, dto.OK("transaction reversed", dto.ToStudentTransactionResponse(txn)))
}
