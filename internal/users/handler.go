// Package users serves the authenticated user's own profile.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"bookmarks/internal/auth"

	"github.com/gin-gonic/gin"
)

// Finder loads users by id
type Finder interface {
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
}

// Handler handles user-related HTTP requests
type Handler struct {
	users  Finder
	logger *slog.Logger
}

// NewHandler creates a new users handler
func NewHandler(users Finder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{users: users, logger: logger}
}

// GetMe handles GET /users/me
// @Summary Current user
// @Produce json
// @Success 200 {object} auth.User
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Failed to load current user", "error", err, "user_id", principal.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user)
}
