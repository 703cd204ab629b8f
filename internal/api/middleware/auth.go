package middleware

import (
	"net/http"
	"strings"

	"chillingstories/internal/api/models"
	"chillingstories/internal/api/service"

	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated principal.
const (
	ctxClaims   = "claims"
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxRole     = "role"
)

// RequireAuth validates the bearer token and puts the principal on the
// request context. Requests without a valid token are rejected.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing or malformed authorization header"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			c.Abort()
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches a principal when a valid token is present and lets
// anonymous requests through untouched. An invalid token is still rejected.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			c.Abort()
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func setPrincipal(c *gin.Context, claims *service.Claims) {
	c.Set(ctxClaims, claims)
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxRole, claims.Role)
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// OptionalUserID returns a pointer form of CurrentUserID for read variants
// that accept an anonymous viewer.
func OptionalUserID(c *gin.Context) *int64 {
	if id, ok := CurrentUserID(c); ok {
		return &id
	}
	return nil
}

// CurrentRole returns the authenticated principal's role, if any.
func CurrentRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxRole)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// RequireAnyRole checks the principal's role against an allow-list.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, ok := CurrentRole(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "role not found in token"})
			c.Abort()
			return
		}
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"success":  false,
			"error":    "insufficient permissions",
			"required": roles,
		})
		c.Abort()
	}
}

// RequireAdmin is a convenience guard for admin-only routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAdmin)
}

// RequireAuthorOrAdmin guards the story/chapter mutation surface.
func RequireAuthorOrAdmin() gin.HandlerFunc {
	return RequireAnyRole(models.RoleAuthor, models.RoleAdmin)
}
