package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/propstay/property-api/internal/core/domain"
	"github.com/propstay/property-api/internal/core/ports"
)

const defaultResetTokenTTL = 30 * time.Minute

// AuthService implements signup, login, current-user lookup and the
// password-reset flow. All collaborators are injected at construction; the
// service keeps no state between calls.
type AuthService struct {
	users         ports.UserRepository
	roles         ports.RoleRepository
	hasher        ports.PasswordHasher
	tokens        ports.TokenIssuer
	notifier      ports.Notifier
	resets        ports.ResetTokenStore
	resetLinkBase string
	resetTokenTTL time.Duration
	log           zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	notifier ports.Notifier,
	resets ports.ResetTokenStore,
	resetLinkBase string,
	resetTokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if resetTokenTTL <= 0 {
		resetTokenTTL = defaultResetTokenTTL
	}
	return &AuthService{
		users:         users,
		roles:         roles,
		hasher:        hasher,
		tokens:        tokens,
		notifier:      notifier,
		resets:        resets,
		resetLinkBase: resetLinkBase,
		resetTokenTTL: resetTokenTTL,
		log:           log,
	}
}

// Signup registers a new account. The email must be unused; the persisted
// record carries the bcrypt hash, never the plaintext. Role selection:
// a non-empty single role wins (uppercased, ROLE_-prefixed), then the
// verbatim role list, then the ROLE_TENANT default.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailExists
	}

	roles, err := s.resolveRoles(ctx, in.Role, in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        roles,
		Phone:        in.Phone,
		ProfileImage: in.ProfileImage,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", created.Email).Strs("roles", created.Roles).Msg("user registered")
	return created, nil
}

// resolveRoles applies the documented priority order and collapses
// duplicates into a sorted set.
func (s *AuthService) resolveRoles(ctx context.Context, role string, roleNames []string) ([]string, error) {
	set := make(map[string]struct{})

	switch {
	case role != "":
		name := domain.RolePrefix + strings.ToUpper(role)
		r, err := s.roles.FindByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("role %q: %w", name, domain.ErrRoleNotFound)
		}
		set[r.Name] = struct{}{}

	case len(roleNames) > 0:
		for _, name := range roleNames {
			r, err := s.roles.FindByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("role %q: %w", name, domain.ErrRoleNotFound)
			}
			set[r.Name] = struct{}{}
		}

	default:
		r, err := s.roles.FindByName(ctx, domain.RoleTenant)
		if err != nil {
			// Missing seed role is a deployment integrity problem, not
			// a caller mistake.
			return nil, fmt.Errorf("default role %q: %w", domain.RoleTenant, domain.ErrRoleNotFound)
		}
		set[r.Name] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// Login verifies credentials and issues a bearer token. An unknown email
// and a wrong password report distinct errors on purpose; the source
// product chose precise diagnostics over enumeration resistance here.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// CurrentUser resolves the authenticated email to a fresh public record.
// The email is trusted here; token verification happens in the middleware.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// ForgotPassword starts the reset flow. The caller always gets a nil error
// so the response cannot be used to probe which emails are registered;
// the token store and the notification sink only see registered accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Msg("forgot password lookup failed")
		}
		return nil
	}

	token := uuid.NewString()
	if err := s.resets.Store(ctx, token, user.Email, s.resetTokenTTL); err != nil {
		s.log.Error().Err(err).Msg("storing reset token failed")
		return nil
	}

	n := ports.Notification{
		To:      user.Email,
		Subject: "Reset your password",
		Body:    fmt.Sprintf("Hi %s, reset your password here: %s?token=%s", user.Name, s.resetLinkBase, token),
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error().Err(err).Msg("queueing reset notification failed")
	}

	return nil
}

// ResetPassword consumes a single-use reset token and replaces the stored
// hash. The token is invalidated even if the subsequent update fails, which
// keeps the single-use guarantee at the cost of a retry via a fresh token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		return err
	}

	s.log.Info().Str("email", email).Msg("password reset completed")
	return nil
}

// ListUsers returns all accounts; access control lives in the RBAC
// middleware, not here.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}
