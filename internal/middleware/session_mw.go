package middleware

import (
	"log"
	"net/http"

	"carmeet/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the admin session token
const SessionCookieName = "admin_token"

// AdminKey is the context key holding the authenticated *model.Admin
const AdminKey = "authAdmin"

// SessionAuthMiddleware resolves the admin session cookie to an admin row.
// Requests without a cookie, or with a token no admin currently holds
// (including tokens superseded by a later login), are rejected with 401.
func SessionAuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		admin, err := authService.AdminByToken(c.Request.Context(), token)
		if err != nil {
			log.Printf("Error resolving session token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
			return
		}
		if admin == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(AdminKey, admin)
		c.Next()
	}
}
