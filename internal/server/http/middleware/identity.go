package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// UserIDContextKey is a gin context key for the requesting user identifier.
	UserIDContextKey = "userID"
	// UserIDHeader carries the user identity established by the outer
	// authentication layer.
	UserIDHeader = "X-User-ID"
)

// RequireUser extracts the user identity set by the upstream auth layer and
// rejects requests without one.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			raw = c.Query("user_id")
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(UserIDContextKey, userID)
		c.Next()
	}
}
