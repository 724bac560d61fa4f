package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orionfest/backend/internal/auth"
	"github.com/orionfest/backend/pkg/response"
)

const (
	// ContextUserID is the key for account ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for account role in gin context.
	ContextUserRole = "user_role"
	// ContextUserEmail is the key for account email in gin context.
	ContextUserEmail = "user_email"
)

// JWT returns a middleware that validates JWT and sets account claims in context.
// Accepts the token from the Authorization header, or the "token" query
// parameter for WebSocket upgrades.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(c, "invalid authorization header")
				c.Abort()
				return
			}
			tokenStr = parts[1]
		} else {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			response.Unauthorized(c, "missing authorization")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(tokenStr)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
