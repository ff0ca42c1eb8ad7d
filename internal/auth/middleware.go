package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const principalKey = "auth_principal"

// Authorizer validates bearer tokens.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (*Principal, error)
}

// BearerAuthMiddleware requires an "Authorization: Bearer <token>" header and
// injects the caller into the gin context
func BearerAuthMiddleware(authz Authorizer, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		accessToken, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: " + err.Error(),
			})
			return
		}

		principal, err := authz.Authorize(c.Request.Context(), accessToken)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Token rejected",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"request_id", c.GetString("request_id"),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: invalid token",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Set("user_id", principal.UserID)
		c.Set("email", principal.Email)
		c.Set("session_id", principal.SessionID)

		c.Next()
	}
}

// PrincipalFrom returns the caller set by BearerAuthMiddleware
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	p, ok := value.(*Principal)
	return p, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], TokenType) {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
