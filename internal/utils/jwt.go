package utils

import (
	"errors"
	"time"

	"aurapay/internal/config"
	"aurapay/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid or expired token")

func jwtSecret() []byte {
	return []byte(config.GetEnv("JWT_SECRET", "dev-secret-change-me"))
}

// GenerateTokens issues an access and a refresh token for the user. Both carry
// the token version so a password change or logout invalidates them together.
func GenerateTokens(user *models.User) (accessToken string, refreshToken string, err error) {
	now := time.Now()
	claims := &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
			Subject:   user.Email,
		},
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		Permissions:  models.GetDefaultPermissions(user.Role),
		TokenVersion: user.TokenVersion,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	if err != nil {
		return "", "", err
	}

	refreshClaims := &models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
			Subject:   user.Email,
		},
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(jwtSecret())
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// ParseToken validates the signature and expiry and returns the claims.
func ParseToken(tokenString string) (*models.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*models.UserClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
