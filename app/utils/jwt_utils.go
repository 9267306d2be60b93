package utils

import (
	"fmt"
	"talkmatch/config"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims represents the claims in the caller identity token.
// Tokens are minted by the accounts collaborator; this service only
// validates them (tests mint their own via GenerateToken).
type JWTClaims struct {
	RequesterID string `json:"requester_id"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed identity token for a requester
func GenerateToken(requesterID string, validity time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RequesterID: requesterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
			Issuer:    config.AppName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, returning its claims
func ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %v", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.RequesterID == "" {
		return nil, fmt.Errorf("token missing requester_id claim")
	}

	return claims, nil
}
