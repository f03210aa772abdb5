package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/propstay/property-api/internal/core/domain"
	"github.com/propstay/property-api/internal/core/ports"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.users[email]
	return ok, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailExists
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = strings.Repeat("0", 23) + string(rune('0'+r.seq))
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	u, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

type stubRoleRepo struct {
	names map[string]bool
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return &stubRoleRepo{names: m}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	if !r.names[name] {
		return nil, domain.ErrRoleNotFound
	}
	return &domain.Role{ID: name, Name: name}, nil
}

// fakeHasher makes hashes reversible for assertions without bcrypt cost.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

type fakeIssuer struct{}

func (fakeIssuer) Issue(user *domain.User) (string, error) {
	return "token-for-" + user.Email, nil
}
func (fakeIssuer) Parse(token string) (*ports.TokenClaims, error) {
	return nil, errors.New("not implemented")
}

type spyNotifier struct {
	sent []ports.Notification
}

func (s *spyNotifier) Notify(_ context.Context, n ports.Notification) error {
	s.sent = append(s.sent, n)
	return nil
}

type memResetStore struct {
	tokens map[string]string
}

func newMemResetStore() *memResetStore {
	return &memResetStore{tokens: make(map[string]string)}
}

func (s *memResetStore) Store(_ context.Context, token, email string, _ time.Duration) error {
	s.tokens[token] = email
	return nil
}

func (s *memResetStore) Consume(_ context.Context, token string) (string, error) {
	email, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrResetTokenInvalid
	}
	delete(s.tokens, token)
	return email, nil
}

type fixture struct {
	svc      *AuthService
	users    *stubUserRepo
	notifier *spyNotifier
	resets   *memResetStore
}

func newFixture(roles ...string) *fixture {
	if len(roles) == 0 {
		roles = domain.SeedRoles
	}
	users := newStubUserRepo()
	notifier := &spyNotifier{}
	resets := newMemResetStore()
	svc := NewAuthService(
		users, newStubRoleRepo(roles...), fakeHasher{}, fakeIssuer{},
		notifier, resets,
		"http://localhost:3000/reset-password", time.Minute, zerolog.Nop(),
	)
	return &fixture{svc: svc, users: users, notifier: notifier, resets: resets}
}

func signupInput(email string) ports.SignupInput {
	return ports.SignupInput{Name: "Alice Adams", Email: email, Password: "s3cret"}
}

// ── Signup ────────────────────────────────────────────────────────────────────

func TestAuthService_Signup_Success(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Signup(context.Background(), ports.SignupInput{
		Name:         "Alice Adams",
		Email:        "alice@example.com",
		Password:     "s3cret",
		Phone:        "555-0100",
		ProfileImage: "uploads/alice.png",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected store-generated ID")
	}
	if user.PasswordHash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}
	view := user.View()
	if !reflect.DeepEqual(view.Roles, []string{domain.RoleTenant}) {
		t.Fatalf("expected default tenant role, got %v", view.Roles)
	}
	if view.Phone != "555-0100" || view.ProfileImage != "uploads/alice.png" {
		t.Fatalf("optional fields not carried: %+v", view)
	}
}

func TestAuthService_Signup_ViewNeverContainsPassword(t *testing.T) {
	f := newFixture()

	user, err := f.svc.Signup(context.Background(), signupInput("alice@example.com"))
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	view := user.View()
	v := reflect.ValueOf(view)
	for i := 0; i < v.NumField(); i++ {
		s, ok := v.Field(i).Interface().(string)
		if ok && strings.Contains(s, "s3cret") {
			t.Fatalf("view field %s leaks the password: %q", v.Type().Field(i).Name, s)
		}
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Signup(context.Background(), signupInput("bob@example.com")); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	_, err := f.svc.Signup(context.Background(), signupInput("bob@example.com"))
	if !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if len(f.users.users) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(f.users.users))
	}
}

func TestAuthService_Signup_SingleRolePrefixed(t *testing.T) {
	f := newFixture()

	in := signupInput("owner@example.com")
	in.Role = "owner"
	user, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if !reflect.DeepEqual(user.Roles, []string{domain.RoleOwner}) {
		t.Fatalf("expected ROLE_OWNER, got %v", user.Roles)
	}
}

func TestAuthService_Signup_SingleRoleMissing(t *testing.T) {
	f := newFixture(domain.RoleTenant) // no ROLE_OWNER seeded

	in := signupInput("owner@example.com")
	in.Role = "owner"
	_, err := f.svc.Signup(context.Background(), in)
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ROLE_OWNER") {
		t.Fatalf("error should name the missing role: %v", err)
	}
	if len(f.users.users) != 0 {
		t.Fatalf("no user must be created on role failure")
	}
}

func TestAuthService_Signup_RoleListVerbatim(t *testing.T) {
	f := newFixture()

	in := signupInput("multi@example.com")
	in.Roles = []string{domain.RoleOwner, domain.RoleTenant, domain.RoleOwner}
	user, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	// Duplicates collapse; result is a sorted set.
	want := []string{domain.RoleOwner, domain.RoleTenant}
	if !reflect.DeepEqual(user.Roles, want) {
		t.Fatalf("expected %v, got %v", want, user.Roles)
	}
}

func TestAuthService_Signup_RoleListNotPrefixed(t *testing.T) {
	f := newFixture()

	// Lowercase names in the list are looked up verbatim and must fail,
	// unlike the single-role field which gets uppercased and prefixed.
	in := signupInput("multi@example.com")
	in.Roles = []string{"owner"}
	if _, err := f.svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound for verbatim list entry, got %v", err)
	}
}

func TestAuthService_Signup_SingleRoleWinsOverList(t *testing.T) {
	f := newFixture()

	in := signupInput("both@example.com")
	in.Role = "admin"
	in.Roles = []string{domain.RoleTenant}
	user, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if !reflect.DeepEqual(user.Roles, []string{domain.RoleAdmin}) {
		t.Fatalf("single role field must win, got %v", user.Roles)
	}
}

func TestAuthService_Signup_DefaultRoleMissing(t *testing.T) {
	f := newFixture(domain.RoleOwner) // tenant seed absent

	_, err := f.svc.Signup(context.Background(), signupInput("alice@example.com"))
	if !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound for missing seed, got %v", err)
	}
}

// ── Login ─────────────────────────────────────────────────────────────────────

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Signup(context.Background(), signupInput("carol@example.com")); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, user, err := f.svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	if user.Email != "carol@example.com" || user.Name != "Alice Adams" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.Login(context.Background(), "ghost@example.com", "whatever")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	// The unknown-email failure is deliberately distinct from the
	// wrong-password failure.
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email must not report invalid credentials")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newFixture()

	_, _ = f.svc.Signup(context.Background(), signupInput("dave@example.com"))
	_, _, err := f.svc.Login(context.Background(), "dave@example.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// ── Current user ──────────────────────────────────────────────────────────────

func TestAuthService_CurrentUser_Idempotent(t *testing.T) {
	f := newFixture()

	_, _ = f.svc.Signup(context.Background(), signupInput("erin@example.com"))

	first, err := f.svc.CurrentUser(context.Background(), "erin@example.com")
	if err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}
	second, err := f.svc.CurrentUser(context.Background(), "erin@example.com")
	if err != nil {
		t.Fatalf("second lookup failed: %v", err)
	}
	if !reflect.DeepEqual(first.View(), second.View()) {
		t.Fatalf("views differ:\n%+v\n%+v", first.View(), second.View())
	}
}

func TestAuthService_CurrentUser_Gone(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.CurrentUser(context.Background(), "gone@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// ── Forgot password ───────────────────────────────────────────────────────────

func TestAuthService_ForgotPassword_UniformResult(t *testing.T) {
	f := newFixture()

	_, _ = f.svc.Signup(context.Background(), signupInput("frank@example.com"))

	if err := f.svc.ForgotPassword(context.Background(), "frank@example.com"); err != nil {
		t.Fatalf("existing email: %v", err)
	}
	if err := f.svc.ForgotPassword(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must also succeed, got %v", err)
	}

	// The side effect is observable only on the sink.
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(f.notifier.sent))
	}
	n := f.notifier.sent[0]
	if n.To != "frank@example.com" {
		t.Fatalf("notification sent to %q", n.To)
	}
	if !strings.Contains(n.Body, "http://localhost:3000/reset-password?token=") {
		t.Fatalf("body missing reset link: %q", n.Body)
	}
}

func TestAuthService_ForgotPassword_TokenStoredForUser(t *testing.T) {
	f := newFixture()

	_, _ = f.svc.Signup(context.Background(), signupInput("grace@example.com"))
	if err := f.svc.ForgotPassword(context.Background(), "grace@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if len(f.resets.tokens) != 1 {
		t.Fatalf("expected one stored token, got %d", len(f.resets.tokens))
	}
	for _, email := range f.resets.tokens {
		if email != "grace@example.com" {
			t.Fatalf("token bound to %q", email)
		}
	}
}

// ── Reset password ────────────────────────────────────────────────────────────

func TestAuthService_ResetPassword_RoundTrip(t *testing.T) {
	f := newFixture()

	_, _ = f.svc.Signup(context.Background(), signupInput("henry@example.com"))
	_ = f.svc.ForgotPassword(context.Background(), "henry@example.com")

	var token string
	for tk := range f.resets.tokens {
		token = tk
	}

	if err := f.svc.ResetPassword(context.Background(), token, "newpass"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, _, err := f.svc.Login(context.Background(), "henry@example.com", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "henry@example.com", "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	// Single use: the same token must not work twice.
	if err := f.svc.ResetPassword(context.Background(), token, "again"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestAuthService_ResetPassword_InvalidToken(t *testing.T) {
	f := newFixture()

	err := f.svc.ResetPassword(context.Background(), "bogus", "newpass")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}
