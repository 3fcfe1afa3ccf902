package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// SetJWTSecret sets the signing secret. Must be called once at startup.
func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

// Claims are the JWT claims carried by a user access token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// GuestClaims are the JWT claims carried by an anonymous guest session token.
// The token is the server-side half of the guest's local-storage mirror: the
// guests table stays the source of truth and the token is only a cache key.
type GuestClaims struct {
	GuestID   uint   `json:"guest_id"`
	ProjectID uint   `json:"project_id"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

const (
	tokenKindUser  = "user"
	tokenKindGuest = "guest"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// GenerateToken creates a signed access token for a registered user.
func GenerateToken(userID uint, username, role string, expireHours int) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		Kind:     tokenKindUser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates a user access token and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != tokenKindUser {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateGuestToken creates a signed session token for a project-scoped guest.
func GenerateGuestToken(guestID, projectID uint, expireHours int) (string, error) {
	now := time.Now()
	claims := GuestClaims{
		GuestID:   guestID,
		ProjectID: projectID,
		Kind:      tokenKindGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseGuestToken validates a guest session token and returns its claims.
// A user access token is not accepted here, and vice versa.
func ParseGuestToken(tokenString string) (*GuestClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &GuestClaims{}, keyFunc)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*GuestClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != tokenKindGuest {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return jwtSecret, nil
}
