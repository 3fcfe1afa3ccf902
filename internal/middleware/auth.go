package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/utils"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
	ContextGuestID  = "guest_id"
	ContextGuestPID = "guest_project_id"
)

// GuestTokenHeader carries the anonymous reviewer's session token. The SPA
// mirrors it in local storage; the server remains the source of truth.
const GuestTokenHeader = "X-Guest-Token"

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// OptionalAuth resolves user identity when a valid token is present but never
// rejects the request. Public project/grain pages use it so an authenticated
// owner is recognized while anonymous visitors pass through.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c); ok {
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUsername, claims.Username)
			c.Set(ContextRole, claims.Role)
		}
		c.Next()
	}
}

// GuestSession resolves the guest session token, if any. A missing, corrupt
// or expired token is treated as "no session" and never fails the request;
// the handler decides whether a session is required.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(GuestTokenHeader)
		if token == "" {
			token = c.Query("guest_token")
		}
		if token != "" {
			if claims, err := utils.ParseGuestToken(token); err == nil {
				c.Set(ContextGuestID, claims.GuestID)
				c.Set(ContextGuestPID, claims.ProjectID)
			}
		}
		c.Next()
	}
}

// AdminRequired is a middleware that checks for admin role
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}

// GetUserID gets the current user ID from context, 0 when anonymous
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}

// GetRole gets the current user role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextRole); exists {
		return role.(string)
	}
	return ""
}

// GetGuestID gets the resolved guest session id from context, 0 when absent
func GetGuestID(c *gin.Context) uint {
	if id, exists := c.Get(ContextGuestID); exists {
		return id.(uint)
	}
	return 0
}

// GetGuestProjectID gets the project the guest session is scoped to
func GetGuestProjectID(c *gin.Context) uint {
	if id, exists := c.Get(ContextGuestPID); exists {
		return id.(uint)
	}
	return 0
}
