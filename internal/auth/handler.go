package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles authentication-related HTTP requests
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Signup handles POST /auth/signup
// @Summary Register a user
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Email and password"
// @Success 201 {object} User
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "email_taken",
				"message": "This email is already registered",
				"field":   "email",
			})
		case errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is too long"})
		default:
			h.logger.ErrorContext(c.Request.Context(), "Signup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Signin handles POST /auth/signin
// @Summary Sign in and receive an access token
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Email and password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /auth/signin [post]
func (h *Handler) Signin(c *gin.Context) {
	req, err := bindCredentials(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	resp, err := h.service.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusForbidden, gin.H{"error": ErrInvalidCredentials.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "Signin failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout
// @Summary Revoke the current access token
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	principal, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.Logout(c.Request.Context(), principal.SessionID); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "Logout failed", "error", err, "session_id", principal.SessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
