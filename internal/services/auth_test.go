package services

import (
	"testing"

	"github.com/sydo/sydo-reviews/internal/config"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/internal/utils"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	jwtCfg := &config.JWTConfig{Secret: "test-secret", ExpireHour: 24, GuestExpireHour: 720}
	ldapCfg := &config.LDAPConfig{Enabled: false}
	return NewAuthService(db, jwtCfg, ldapCfg)
}

func seedLocalUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		Username: username,
		Password: hashed,
		Prenom:   "Marie",
		Nom:      "Dupont",
		Role:     "user",
		AuthType: "local",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func TestLogin_Local(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	seedLocalUser(t, db, "marie", "secret123")

	result, err := svc.Login(&LoginRequest{Username: "marie", Password: "secret123"}, "127.0.0.1", "go-test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected both tokens")
	}

	claims, err := utils.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Username != "marie" {
		t.Errorf("token names wrong user: %q", claims.Username)
	}

	if result.User.LastLogin == nil {
		t.Error("login must stamp last_login")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	seedLocalUser(t, db, "marie", "secret123")

	if _, err := svc.Login(&LoginRequest{Username: "marie", Password: "nope"}, "", ""); err == nil {
		t.Error("wrong password must fail")
	}
	if _, err := svc.Login(&LoginRequest{Username: "ghost", Password: "secret123"}, "", ""); err == nil {
		t.Error("unknown user must fail")
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	user := seedLocalUser(t, db, "marie", "secret123")
	db.Model(user).Update("is_active", false)

	if _, err := svc.Login(&LoginRequest{Username: "marie", Password: "secret123"}, "", ""); err == nil {
		t.Error("disabled user must not log in")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	seedLocalUser(t, db, "marie", "secret123")

	login, err := svc.Login(&LoginRequest{Username: "marie", Password: "secret123"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(login.RefreshToken, "", "")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh must rotate the token")
	}

	// The consumed token is revoked, replaying it fails
	if _, err := svc.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("replayed refresh token must be rejected")
	}

	// The rotated one still works
	if _, err := svc.Refresh(refreshed.RefreshToken, "", ""); err != nil {
		t.Errorf("rotated token must stay valid: %v", err)
	}
}

func TestRevokeRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	seedLocalUser(t, db, "marie", "secret123")

	login, err := svc.Login(&LoginRequest{Username: "marie", Password: "secret123"}, "", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.RevokeRefreshToken(login.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Refresh(login.RefreshToken, "", ""); err == nil {
		t.Error("revoked token must be rejected")
	}

	// Revoking an unknown or empty token is a no-op
	if err := svc.RevokeRefreshToken(""); err != nil {
		t.Errorf("empty revoke: %v", err)
	}
}

func TestCreateAdminIfNotExists(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	var admin models.User
	if err := db.Where("role = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("admin must exist: %v", err)
	}
	if admin.Username != "admin" || admin.AuthType != "local" {
		t.Errorf("unexpected admin: %+v", admin)
	}

	// Idempotent
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count != 1 {
		t.Errorf("expected a single admin, got %d", count)
	}
}

func TestChangePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(db)
	user := seedLocalUser(t, db, "marie", "secret123")

	err := svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "wrong", NewPassword: "nouveau1"})
	if err == nil {
		t.Error("wrong old password must fail")
	}

	err = svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "secret123", NewPassword: "nouveau1"})
	if err != nil {
		t.Fatalf("change: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Username: "marie", Password: "nouveau1"}, "", ""); err != nil {
		t.Errorf("login with new password: %v", err)
	}

	db.Model(user).Update("auth_type", "ldap")
	err = svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "nouveau1", NewPassword: "autre123"})
	if err == nil {
		t.Error("ldap users must not change password locally")
	}
}
