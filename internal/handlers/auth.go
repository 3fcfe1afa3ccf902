package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sydo/sydo-reviews/internal/config"
	"github.com/sydo/sydo-reviews/internal/middleware"
	"github.com/sydo/sydo-reviews/internal/services"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	authService *services.AuthService
	ldapEnabled bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT, &cfg.LDAP),
		ldapEnabled: cfg.LDAP.Enabled,
	}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpireAt)
	response.Success(c, gin.H{
		"token":     result.AccessToken,
		"expire_at": result.AccessExpireAt,
		"user":      result.User,
	})
}

// Refresh rotates the refresh token and issues a new access token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	result, err := h.authService.Refresh(token, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpireAt)
	response.Success(c, gin.H{
		"token":     result.AccessToken,
		"expire_at": result.AccessExpireAt,
	})
}

// Logout revokes the refresh token and clears the cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.refreshTokenFrom(c); token != "" {
		if err := h.authService.RevokeRefreshToken(token); err != nil {
			response.Error(c, err)
			return
		}
	}
	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", false, true)
	response.Success(c, gin.H{"message": "logged out"})
}

// GetCurrentUser returns the logged-in user's profile
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// GetAuthConfig tells the login page which methods are available
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{"ldap_enabled": h.ldapEnabled})
}

// ChangePassword updates the current user's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(c), &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "password changed"})
}

// CreateAdminIfNotExists bootstraps the default admin account
func (h *AuthHandler) CreateAdminIfNotExists() error {
	return h.authService.CreateAdminIfNotExists()
}

func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie != "" {
		return cookie
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expireAt time.Time) {
	maxAge := int(time.Until(expireAt).Seconds())
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
