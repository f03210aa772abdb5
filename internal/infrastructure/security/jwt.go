package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/propstay/property-api/internal/core/domain"
	"github.com/propstay/property-api/internal/core/ports"
)

const defaultTokenTTL = 24 * time.Hour

// JWTIssuer issues and validates HS256 bearer tokens. The subject claim is
// the user's email; name and roles ride along so the API can render the
// identity without a store round-trip.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.Email,
		"name":  user.Name,
		"roles": user.Roles,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Parse verifies the signature and expiry and extracts the identity claims.
// Tokens signed with any algorithm other than HS256 are rejected.
func (i *JWTIssuer) Parse(token string) (*ports.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	email, _ := claims["sub"].(string)
	if email == "" {
		return nil, fmt.Errorf("token missing subject: %w", jwt.ErrTokenInvalidClaims)
	}
	name, _ := claims["name"].(string)

	var roles []string
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}

	return &ports.TokenClaims{Email: email, Name: name, Roles: roles}, nil
}
