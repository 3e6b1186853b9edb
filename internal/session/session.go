// Package session maps the caller's authenticated session to the long-lived
// credential record a device registration is bound to.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is what the transport layer can extract from a request without
// touching storage. Either field may be empty for an unauthenticated or
// token-less caller.
type Session struct {
	UserID  string
	TokenID int64
}

type Claims struct {
	TokenID int64 `json:"tid"`
	jwt.RegisteredClaims
}

// TokenCodec signs and parses the HS256 session JWT that carries the user id
// and the bound token id.
type TokenCodec struct {
	signingKey []byte
	issuer     string
}

func NewTokenCodec(signingKey []byte, issuer string) *TokenCodec {
	return &TokenCodec{signingKey: signingKey, issuer: issuer}
}

func (c *TokenCodec) Mint(userID string, tokenID int64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

func (c *TokenCodec) Parse(raw string) (Session, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return c.signingKey, nil
	})
	if err != nil {
		return Session{}, err
	}
	if !tok.Valid {
		return Session{}, errors.New("invalid session token")
	}
	if claims.Issuer != c.issuer {
		return Session{}, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return Session{UserID: claims.Subject, TokenID: claims.TokenID}, nil
}
