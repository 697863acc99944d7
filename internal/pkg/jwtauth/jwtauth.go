package jwtauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/stackit/internal/stackit/domain/models"
	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpired      = errors.New("token expired")
)

type Claims struct {
	jwt.StandardClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

func GetToken(u models.User, ttl time.Duration, secret string) (string, error) {
	now := time.Now()

	claims := Claims{
		StandardClaims: jwt.StandardClaims{ //nolint:exhaustruct
			Subject:   u.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Username: u.Username,
		Role:     u.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signed string error: %w", err)
	}

	return signed, nil
}

// ValidateToken checks the signature and expiry and returns the claims.
func ValidateToken(tokenString, secret string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return []byte(secret), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Claims{}, ErrExpired
		}

		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// ExpiresAt reads the exp claim without verifying the signature. The web shell has no
// signing secret and only uses this to skip a round trip for tokens that are already dead.
func ExpiresAt(tokenString string) (time.Time, error) {
	var claims Claims

	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}

	return time.Unix(claims.ExpiresAt, 0), nil
}
