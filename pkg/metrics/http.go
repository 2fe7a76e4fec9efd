package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// GinMiddleware counts requests by method, route template and status class.
// Unmatched paths share one label so scanners cannot blow up cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		class := strconv.Itoa(c.Writer.Status()/100) + "xx"
		HTTPRequests.WithLabelValues(c.Request.Method, route, class).Inc()
	}
}
