// Package middleware holds the gin middleware of the file server.
package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/filekit/errors"
)

// abort writes err as the JSON error envelope and stops the chain.
func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.Status(err), apperrors.ToAppError(err).ToResponse())
}
