package ports

import (
	"context"

	"github.com/propstay/property-api/internal/core/domain"
)

// SignupInput carries the fields accepted at registration. Role and Roles
// are independent optional inputs; Role wins when both are present.
type SignupInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Roles        []string
	Phone        string
	ProfileImage string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, email string) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
