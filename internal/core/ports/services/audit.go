package services

import (
	"context"
	"time"
)

// AuditEvent is one audit record emitted per posting/reversal action.
// Before/After carry balance snapshots where applicable.
type AuditEvent struct {
	Action     string
	EntityKind string
	EntityID   string
	ActorID    string
	Before     interface{}
	After      interface{}
	OccurredAt time.Time
}

// AuditLogger receives audit events fire-and-forget: implementations must
// never block or fail the posting transaction.
type AuditLogger interface {
	Record(ctx context.Context, event AuditEvent)
}
