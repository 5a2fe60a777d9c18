package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dfworx/auth-service/internal/auth"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.TokenPayload, error)
}

func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		// Expect format: "Bearer <token>"
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" || strings.Contains(tokenString, " ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		payload, err := authenticator.Authenticate(c.Request.Context(), tokenString)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrTokenExpired):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			return
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Request timed out"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("userID", payload.Subject)
		c.Set("claims", payload.Claims)
		c.Set("token", tokenString)

		c.Next()
	}
}
