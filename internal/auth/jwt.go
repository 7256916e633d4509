package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject is the only subject tokens are issued for.
const AdminSubject = "admin"

type TokenService struct {
	Secret   []byte
	Issuer   string
	Duration time.Duration
	Now      func() time.Time
}

func NewTokenService(secret, issuer string, d time.Duration) TokenService {
	return TokenService{Secret: []byte(secret), Issuer: issuer, Duration: d, Now: time.Now}
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (ts TokenService) now() time.Time {
	if ts.Now == nil {
		return time.Now()
	}
	return ts.Now()
}

// SignAdmin issues a token that authorizes the admin endpoints.
func (ts TokenService) SignAdmin() (string, time.Time, error) {
	if len(ts.Secret) == 0 {
		return "", time.Time{}, errors.New("sign token: empty secret")
	}
	now := ts.now()
	exp := now.Add(ts.Duration)

	claims := Claims{
		Role: AdminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   AdminSubject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(ts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (ts TokenService) Parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// enforce HS256
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.Secret, nil
	}, jwt.WithIssuer(ts.Issuer), jwt.WithTimeFunc(ts.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Role != AdminSubject {
		return nil, fmt.Errorf("token role %q not allowed", claims.Role)
	}
	return claims, nil
}
