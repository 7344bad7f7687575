package middleware

import (
	"context"
	"strings"

	"unipool/internal/utils"
	"unipool/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Identity copies the caller id from the x-user-id header (or the legacy
// x_user_id spelling) into the gin context and the request context. It never
// rejects a request; handlers that need a caller use RequireIdentity.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(utils.HeaderUserID))
		if userID == "" {
			userID = strings.TrimSpace(c.GetHeader(utils.HeaderUserIDLegacy))
		}

		if userID != "" {
			c.Set(utils.ContextUserID, userID)
			ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, userID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// RequireIdentity aborts with 401 when Identity found no caller.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			utils.UnauthorizedResponse(c, utils.ErrMissingIdentity)
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the caller id set by Identity, or "".
func UserID(c *gin.Context) string {
	return c.GetString(utils.ContextUserID)
}
