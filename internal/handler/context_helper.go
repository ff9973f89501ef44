package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/middleware"
	"github.com/noah-isme/bus-fleet-api/internal/models"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// bindJSON decodes the body and writes a 400 when it is malformed.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

// idParam reads the id from the path, falling back to ?id=.
func idParam(c *gin.Context) string {
	if id := strings.TrimSpace(c.Param("id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("id"))
}

// parseDateParam accepts YYYY-MM-DD or RFC3339.
func parseDateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return &parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func parseQueryBool(c *gin.Context, key string) *bool {
	switch strings.ToLower(c.Query(key)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}
