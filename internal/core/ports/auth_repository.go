package ports

import (
	"context"
	"time"

	"github.com/propstay/property-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user records. Create
// must treat a duplicate email as authoritative and return
// domain.ErrEmailExists, since the exists-check and the write are not atomic
// at the workflow level.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	List(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository resolves role names. Roles are read-only from the
// workflow's perspective.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}

// ResetTokenStore persists single-use password-reset tokens with an expiry.
// Consume returns the email the token was issued for and invalidates the
// token in the same step; a second Consume of the same token must fail with
// domain.ErrResetTokenInvalid.
type ResetTokenStore interface {
	Store(ctx context.Context, token, email string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}
