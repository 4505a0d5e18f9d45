package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coralbay/estate/internal/services"
)

// AuthHandler handles portal logins.
type AuthHandler struct {
	authService services.IAuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	AccessCode string `json:"access_code"`
}

// LoginAgent handles POST /v1/login/agent
func (h *AuthHandler) LoginAgent(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, token, err := h.authService.LoginAgent(c.Request.Context(), req.AccessCode)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": actor})
}

// LoginManager handles POST /v1/login/manager
func (h *AuthHandler) LoginManager(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actor, token, err := h.authService.LoginManager(c.Request.Context(), req.AccessCode)
	if err != nil {
		if errors.Is(err, services.ErrUnknownManagerCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown manager code"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": actor})
}
