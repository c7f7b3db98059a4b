package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devmahmod/social-api/utils"
)

const (
	// ContextUserIDKey stores the authenticated user ID in the Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside the Gin context.
	ContextUsernameKey = "username"
	// ContextIsAdminKey stores the administrator flag from the token.
	ContextIsAdminKey = "is_admin"
)

// AuthRequired ensures the request carries a valid, non-revoked bearer token
// and attaches the decoded identity to the context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(ctx, http.StatusUnauthorized, "authorization header missing")
			ctx.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header format")
			ctx.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, "empty bearer token")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(jwtSecret, tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Set(ContextIsAdminKey, claims.IsAdmin)
		ctx.Next()
	}
}

// AdminRequired rejects callers whose token lacks the administrator flag.
// It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !IsAdmin(ctx) {
			utils.Error(ctx, http.StatusForbidden, "access denied, admins only")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// SelfOnly allows the request only when the :id path parameter matches the
// authenticated user. Administrators get no override here.
func SelfOnly() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		targetID, ok := IDParam(ctx)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, "invalid id")
			ctx.Abort()
			return
		}
		userID, ok := CurrentUserID(ctx)
		if !ok || userID != targetID {
			utils.Error(ctx, http.StatusForbidden, "access denied, you are not allowed")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// SelfOrAdmin allows the request when the :id path parameter matches the
// authenticated user or the caller is an administrator.
func SelfOrAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		targetID, ok := IDParam(ctx)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, "invalid id")
			ctx.Abort()
			return
		}
		userID, _ := CurrentUserID(ctx)
		if userID != targetID && !IsAdmin(ctx) {
			utils.Error(ctx, http.StatusForbidden, "access denied, forbidden")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from the context.
func CurrentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// IsAdmin reports whether the authenticated caller is an administrator.
func IsAdmin(ctx *gin.Context) bool {
	value, exists := ctx.Get(ContextIsAdminKey)
	if !exists {
		return false
	}
	admin, _ := value.(bool)
	return admin
}
