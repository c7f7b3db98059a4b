package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devmahmod/social-api/utils"
)

// ValidateIDParam rejects requests whose :id path parameter is not a positive
// integer before any authentication or database work happens.
func ValidateIDParam() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := IDParam(ctx); !ok {
			utils.Error(ctx, http.StatusBadRequest, "invalid id")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// IDParam parses the :id path parameter as an unsigned integer.
func IDParam(ctx *gin.Context) (uint, bool) {
	raw := ctx.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
