package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filekit/component"
)

// Readiness returns a handler for readiness probes: 503 while any component
// is unhealthy.
func Readiness(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ready"
		httpStatus := http.StatusOK

		if checker != nil && checker(c.Request.Context()).Status == component.StatusUnhealthy {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
