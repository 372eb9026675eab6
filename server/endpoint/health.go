package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/filekit/component"
)

// HealthChecker returns the aggregated health of the process.
type HealthChecker func(ctx context.Context) component.Report

// Health returns a handler that reports component health. Unhealthy is 503.
func Health(checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := component.Report{Status: component.StatusHealthy}
		if checker != nil {
			report = checker(c.Request.Context())
		}

		httpStatus := http.StatusOK
		if report.Status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":     report.Status,
			"service":    report.Service,
			"version":    report.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": report.Components,
		})
	}
}
