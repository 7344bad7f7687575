package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RealtimeClaims authorise one user on the realtime socket.
type RealtimeClaims struct {
	ClientID string `json:"clientId"`
	jwt.RegisteredClaims
}

type RealtimeToken struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"clientId"`
	ExpiresAt time.Time `json:"expiresAt"`
	TokenType string    `json:"tokenType"`
}

func GenerateRealtimeToken(userID, issuer, secretKey string, ttl time.Duration) (*RealtimeToken, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &RealtimeClaims{
		ClientID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return nil, err
	}

	return &RealtimeToken{
		Token:     signed,
		ClientID:  userID,
		ExpiresAt: expiresAt.UTC(),
		TokenType: "Bearer",
	}, nil
}

func ValidateRealtimeToken(tokenString, issuer, secretKey string) (*RealtimeClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RealtimeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*RealtimeClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
