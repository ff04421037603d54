package jwtutil

import (
	"time"

	"accounts-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret   = []byte("secret-key")
	validity = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime. Must be called
// once at startup before any token is generated or validated.
func Initialize(cfg *config.JWTConfig) {
	if cfg.SigningKey != "" {
		secret = []byte(cfg.SigningKey)
	}
	if cfg.ExpirationHours > 0 {
		validity = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// SessionClaims represents the JWT claims for an authenticated session
type SessionClaims struct {
	Email  string `json:"email"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a session JWT for the given user
func GenerateToken(email string, userID uint, role string) (string, error) {
	claims := SessionClaims{
		Email:  email,
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the session JWT
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
