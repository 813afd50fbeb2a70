package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openedu/school_ledger_app/internal/apperrors"
	"github.com/openedu/school_ledger_app/internal/dto"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// statusForError maps the error taxonomy onto HTTP status codes. Every
// handler funnels service errors through here so the mapping stays uniform.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnbalancedEntry),
		errors.Is(err, apperrors.ErrUnknownAccount),
		errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrPreconditionFailed),
		errors.Is(err, apperrors.ErrGracePeriodExpired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrTransientConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs and writes a failure envelope for a service error.
// Internal errors are not echoed to the client.
func respondError(c *gin.Context, msg string, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		c.JSON(status, dto.Fail(msg, "internal error"))
		return
	}
	logger.Warn(msg, slog.String("error", err.Error()))
	c.JSON(status, dto.Fail(msg, err.Error()))
}

// respondBadRequest writes a failure envelope for a malformed request body
// or query.
func respondBadRequest(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Invalid request format", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.Fail("invalid request format", err.Error()))
}
