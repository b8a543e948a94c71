// Package auth mints and checks the HS256 bearer tokens exchanged between
// the CLI and the persistence service. It is a single-tenant setup: both
// sides share one secret and the token only proves possession of it.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/melitton/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the name of the calling client.
type Claims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// GenerateToken signs a token for client that expires after validityDuration.
func GenerateToken(client string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Client: client,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns the client name it was issued to.
// Expired tokens yield common.ErrTokenExpired, anything else common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Client, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
	return tok, tok != ""
}
