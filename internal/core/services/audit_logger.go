package services

import (
	"context"
	"log/slog"

	portssvc "github.com/openedu/school_ledger_app/internal/core/ports/services"
	"github.com/openedu/school_ledger_app/internal/middleware"
)

// slogAuditLogger emits audit events as structured log records. Recording is
// fire-and-forget: it never fails the posting that produced the event.
type slogAuditLogger struct{}

// NewSlogAuditLogger creates an AuditLogger backed by the request logger.
func NewSlogAuditLogger() portssvc.AuditLogger {
	return &slogAuditLogger{}
}

var _ portssvc.AuditLogger = (*slogAuditLogger)(nil)

func (l *slogAuditLogger) Record(ctx context.Context, event portssvc.AuditEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.String("audit_action", event.Action),
		slog.String("entity_kind", event.EntityKind),
		slog.String("entity_id", event.EntityID),
		slog.String("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	if event.Before != nil {
		attrs = append(attrs, slog.Any("before", event.Before))
	}
	if event.After != nil {
		attrs = append(attrs, slog.Any("after", event.After))
	}
	logger.Info("Audit event", attrs...)
}
