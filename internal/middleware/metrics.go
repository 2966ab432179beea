package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gardenia-api/internal/service"
)

// unmatchedRoute labels requests no route matched. Raw paths are never used as
// labels since ticket tokens and registration ids would each create a series.
const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template, e.g.
// /api/v1/registrations/validate/:regId.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
