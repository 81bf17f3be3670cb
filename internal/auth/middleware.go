package auth

import (
	"net/http"
	"strings"

	"device-registry/internal/types"

	"github.com/gin-gonic/gin"
)

// Middleware validates the bearer token and stores the username and role in
// the request context. Requests without a valid, unexpired, correctly-signed
// token fail with 401 before reaching the service layer.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "Missing authorization header", nil))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "Invalid authorization header format", nil))
			c.Abort()
			return
		}

		claims, err := s.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse("AUTH_401", "Invalid or expired token", nil))
			c.Abort()
			return
		}

		c.Set("username", claims.Name)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole allows the request through only when the token's role is one
// of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, types.NewErrorResponse("AUTH_403", "Insufficient role", gin.H{
			"required": roles,
		}))
		c.Abort()
	}
}
