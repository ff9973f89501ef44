package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/internal/service"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
	"github.com/noah-isme/bus-fleet-api/pkg/logger"
	"github.com/noah-isme/bus-fleet-api/pkg/middleware/requestid"
)

type stubValidator map[string]*models.JWTClaims

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
}

var tokens = stubValidator{
	"admin-token":  {UserID: "u-admin", Role: models.RoleAdmin},
	"staff-token":  {UserID: "u-staff", Role: models.RoleStaff},
	"viewer-token": {UserID: "u-viewer", Role: models.RoleViewer},
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAndRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWT(tokens))
	router.GET("/read", Readers(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(logger.ContextUserIDKey))
	})
	router.POST("/write", Writers(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "forged").Code)

	rec := serve(router, http.MethodGet, "/read", "viewer-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-viewer", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/write", "viewer-token").Code)
	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/write", "staff-token").Code)
	assert.Equal(t, http.StatusCreated, serve(router, http.MethodPost, "/write", "admin-token").Code)
}

type setupFlag bool

func (s setupFlag) NeedsSetup(ctx context.Context) (bool, error) { return bool(s), nil }

func TestAdminUnlessSetup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	calls := 0
	build := func(needsSetup bool) *gin.Engine {
		router := gin.New()
		router.POST("/register", AdminUnlessSetup(setupFlag(needsSetup), tokens), func(c *gin.Context) {
			calls++
			c.Status(http.StatusCreated)
		})
		return router
	}

	assert.Equal(t, http.StatusCreated, serve(build(true), http.MethodPost, "/register", "").Code)

	locked := build(false)
	assert.Equal(t, http.StatusUnauthorized, serve(locked, http.MethodPost, "/register", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(locked, http.MethodPost, "/register", "staff-token").Code)
	assert.Equal(t, http.StatusCreated, serve(locked, http.MethodPost, "/register", "admin-token").Code)
	assert.Equal(t, 2, calls)
}

type failingCounter struct{}

func (failingCounter) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func TestRateLimitFallsBackToMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(failingCounter{}, nil)
	router := gin.New()
	router.POST("/login", limiter.Limit("login", 2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/login", "").Code)
	rec := serve(router, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimitWindowResets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(nil, nil)
	limiter.now = func() time.Time { return now }
	router := gin.New()
	router.GET("/", limiter.Limit("api", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/", "").Code)
	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/", "").Code)
}

type recordingAudit struct {
	entries []*models.AuditLog
}

func (r *recordingAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.entries = append(r.entries, log)
	return nil
}

func TestAuditRecordsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	audit := &recordingAudit{}
	router := gin.New()
	router.Use(requestid.Middleware(), JWT(tokens), Audit(audit, "buses", nil))
	router.GET("/buses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.DELETE("/buses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.PUT("/buses/:id", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	serve(router, http.MethodGet, "/buses/b1", "staff-token")
	serve(router, http.MethodPut, "/buses/b1", "staff-token")
	serve(router, http.MethodDelete, "/buses/b1", "staff-token")

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditActionDelete, entry.Action)
	assert.Equal(t, "buses", entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "b1", *entry.ResourceID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-staff", *entry.UserID)
	assert.NotEmpty(t, entry.RequestID)
	assert.Contains(t, string(entry.Details), `"path":"/buses/:id"`)
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/buses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	serve(router, http.MethodGet, "/buses/b1", "")
	serve(router, http.MethodGet, "/buses/b2", "")
	serve(router, http.MethodGet, "/wp-login.php", "")

	body := serve(router, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/buses/:id",status="200"} 2`)
	assert.Contains(t, body, `path="unmatched",status="404"`)
	assert.False(t, strings.Contains(body, `path="/metrics"`))
}
