package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-fleet-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records latency per route template. Requests that hit no route
// share one label so scanners cannot blow up the series count.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "/metrics" {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
