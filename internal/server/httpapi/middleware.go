package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// authRequired verifies the Authorization header before any protected
// handler runs. Missing, malformed, or expired tokens abort with 401; no
// state is touched for unauthenticated calls.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := s.users.VerifyToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// currentUserID returns the id the auth middleware stored on the context.
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
