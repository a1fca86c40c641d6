package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/soundprediction/claimgraph/pkg/server/dto"
)

// writeError aborts the request with an error body.
func writeError(c *gin.Context, status int, errCode, message string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
