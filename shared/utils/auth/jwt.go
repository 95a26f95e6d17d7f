package utils

import (
	"errors"
	"time"

	"talenthub-backend/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by an access token. Subject holds the user id, ID the
// unique token id (jti). Refresh capability is never embedded here.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(config.GetConfig().JWTSecret)
}

// GetAccessTokenDuration returns the access token lifetime from config
func GetAccessTokenDuration() time.Duration {
	return time.Duration(config.GetConfig().GetJWTExpireMinutes()) * time.Minute
}

// GetRefreshTokenDuration returns the refresh token lifetime from config
func GetRefreshTokenDuration() time.Duration {
	return time.Duration(config.GetConfig().GetJWTRefreshExpireDays()) * 24 * time.Hour
}

// GenerateAccessToken mints a signed HS256 access token for the user and
// returns it with its lifetime in seconds.
func GenerateAccessToken(userID uuid.UUID, email string, roles []string) (string, int, error) {
	expireDuration := GetAccessTokenDuration()
	now := time.Now().UTC()

	claims := Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expireDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", 0, err
	}

	return signed, int(expireDuration.Seconds()), nil
}

// ValidateAccessToken verifies signature and expiry and returns the claims.
// Claims are never trusted without verification.
func ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
