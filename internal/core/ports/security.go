package ports

import "github.com/propstay/property-api/internal/core/domain"

// PasswordHasher is a one-way hash + verify pair for credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenClaims is the identity snapshot carried inside a bearer token.
type TokenClaims struct {
	Email string
	Name  string
	Roles []string
}

// TokenIssuer creates and validates signed bearer tokens binding an
// authenticated identity.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
	Parse(token string) (*TokenClaims, error)
}
