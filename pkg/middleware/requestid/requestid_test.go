package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		*seen = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var seen string
	w := httptest.NewRecorder()
	newRouter(&seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 36)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	newRouter(&seen).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	newRouter(&seen).ServeHTTP(httptest.NewRecorder(), req)
	assert.Len(t, seen, 36)
}
