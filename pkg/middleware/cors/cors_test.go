package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.Any("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowList(t *testing.T) {
	w := serve([]string{"https://fleet.example.com/"}, http.MethodGet, "https://fleet.example.com")
	assert.Equal(t, "https://fleet.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve([]string{"https://fleet.example.com"}, http.MethodGet, "https://evil.example.com")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	w := serve(nil, http.MethodOptions, "https://any.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
