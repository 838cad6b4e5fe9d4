package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var errInvalidCookie = errors.New("invalid session cookie")

// CookieSigner wraps session tokens in an HS256 JWT so that forged or altered
// cookies are rejected before touching the session store. The JWT ID carries the
// opaque token; the store remains the source of truth.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner creates a signer with the given secret.
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

// Sign encodes token into a cookie value valid for ttl.
func (s *CookieSigner) Sign(token string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        token,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry of a cookie value and returns the session token.
func (s *CookieSigner) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidCookie
	}
	if claims.ID == "" {
		return "", errInvalidCookie
	}
	return claims.ID, nil
}
