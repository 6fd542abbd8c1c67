package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/observability"
)

// Routes that are not counted: the scrape endpoint itself and the SSE stream,
// whose duration is the client's session length.
var unmeteredRoutes = map[string]bool{
	"/metrics":        true,
	"/api/sse/stream": true,
}

// Metrics records request count and latency labelled by route template, so
// /api/days/3/skill-trees and /api/days/4/skill-trees share one series.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if unmeteredRoutes[route] {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}

		start := time.Now()
		m.ApiInflightInc()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
