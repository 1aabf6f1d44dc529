package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opas/backend/internal/application/audit"
	"github.com/opas/backend/internal/interfaces/http/middleware"
)

// auditRecorder appends audit log entries for admin mutations. The audit
// service logs its own failures; recording never blocks the request.
type auditRecorder struct {
	auditService *audit.Service
}

func (r auditRecorder) record(c *gin.Context, action, objectType string, objectID *uuid.UUID, detail map[string]interface{}) {
	if r.auditService == nil {
		return
	}

	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		return
	}

	adminID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return
	}

	_, _ = r.auditService.Record(c.Request.Context(), audit.RecordInput{
		AdminID:       adminID,
		AdminUsername: claims.Username,
		Action:        action,
		ObjectType:    objectType,
		ObjectID:      objectID,
		Detail:        detail,
		RequestID:     getRequestID(c),
	})
}
