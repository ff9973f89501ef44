package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/middleware/requestid"
)

// AuditWriter persists audit entries.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records successful writes under the given resource name.
func Audit(writer AuditWriter, resource string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		action := auditAction(c.Request.Method)
		if action == "" || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			RequestID: requestid.Value(c),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if claims, ok := Claims(c); ok {
			entry.UserID = &claims.UserID
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		} else if id := c.Query("id"); id != "" {
			entry.ResourceID = &id
		}
		entry.Details, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		if err := writer.CreateAuditLog(c.Request.Context(), entry); err != nil {
			logger.Warn("audit log not written", zap.String("resource", resource), zap.Error(err))
		}
	}
}

func auditAction(method string) string {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate
	case http.MethodDelete:
		return models.AuditActionDelete
	default:
		return ""
	}
}
