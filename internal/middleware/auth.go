package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rshashank20/foodexpiry-tracker/internal/auth"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
)

// AuthMiddleware validates the bearer token and puts the user id into the
// gin context under "userID".
func AuthMiddleware(tokens *auth.Tokens, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format, use 'Bearer <token>'"})
			c.Abort()
			return
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			log.Debug("rejected token", logging.String("path", c.FullPath()), logging.Err(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token: " + err.Error()})
			c.Abort()
			return
		}

		// Attach user info to request context
		c.Set("userID", claims.UserID())
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}
