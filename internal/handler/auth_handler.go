package handler

import (
	"errors"
	"log"
	"net/http"

	"carmeet/internal/middleware"
	"carmeet/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles admin authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Login verifies admin credentials and sets the session cookie. A new
// login replaces the admin's stored token, so older sessions go stale.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credentials"})
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		log.Printf("Error during admin login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	// Host-only session cookie, no Max-Age; it lives until the browser closes
	c.SetCookie(middleware.SessionCookieName, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterAuthRoutes registers the admin login route
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/admin/login", h.Login)
}
