package server

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/filekit/errors"
)

// RespondWithError writes err as the JSON error envelope. AppErrors keep
// their status; anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperrors.Status(err), apperrors.ToAppError(err).ToResponse())
}
