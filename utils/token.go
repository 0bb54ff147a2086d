package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const RoleAdmin = "admin"

type JwtCustomClaim struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer signs and validates the short-lived admin session tokens.
type TokenIssuer struct {
	secret   []byte
	lifespan time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret string, lifespan time.Duration) *TokenIssuer {
	if secret == "" {
		secret = "FoodPOS-Secret"
	}
	if lifespan <= 0 {
		lifespan = 2 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), lifespan: lifespan, now: time.Now}
}

func (t *TokenIssuer) JwtGenerate(role string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(t.lifespan).Unix(),
			IssuedAt:  now.Unix(),
		},
	})
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) JwtValidate(token string) (*JwtCustomClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claim, nil
}
