package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes a client-facing error as {"message": ...}.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// ServerError writes a 500 with the underlying diagnostic attached. Passing
// the raw error text through is acceptable for this domain; callers own the
// human-readable message.
func ServerError(ctx *gin.Context, message string, err error) {
	payload := gin.H{"message": message}
	if err != nil {
		payload["error"] = err.Error()
	}
	ctx.JSON(http.StatusInternalServerError, payload)
}
