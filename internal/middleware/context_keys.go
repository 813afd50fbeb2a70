package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the acting staff member's ID in the
// context.
const actorIDKey = contextKey("actorID")

// ActorHeader is the request header carrying the acting staff member's ID.
// The upstream gateway authenticates staff and forwards the identity here;
// every posted entry records it in the audit columns.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware extracts the acting staff member's ID from the request
// header and stores it in the request context. Requests without an actor are
// rejected: every write must be attributable.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorHeader)
		if actorID == "" {
			GetLoggerFromCtx(c.Request.Context()).Warn("Actor header missing", slog.String("header", ActorHeader))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ActorHeader + " header required"})
			return
		}

		ctxWithActor := context.WithValue(c.Request.Context(), actorIDKey, actorID)
		enrichedLogger := GetLoggerFromCtx(c.Request.Context()).With(slog.String("actor_id", actorID))
		ctxWithLoggerAndActor := context.WithValue(ctxWithActor, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctxWithLoggerAndActor)

		c.Next()
	}
}

// GetActorIDFromContext retrieves the acting staff member's ID from the Gin
// context. It returns the ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorIDVal := c.Request.Context().Value(actorIDKey)
	if actorIDVal == nil {
		return "", false
	}

	actorID, ok := actorIDVal.(string)
	if !ok {
		return "", false
	}

	return actorID, true
}
