package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrEmailExists = errors.New("email already exists")
var ErrUserNotFound = errors.New("this email is not registered")
var ErrInvalidCredentials = errors.New("incorrect password")
var ErrRoleNotFound = errors.New("role not found")
var ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

// User models a registered account. Email is the identity key and is unique
// across all users; PasswordHash never holds the plaintext.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Phone        string    `json:"phone,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserView is the public projection of a User returned by the API. It never
// carries the password hash.
type UserView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	Phone        string   `json:"phone,omitempty"`
	ProfileImage string   `json:"profile_image,omitempty"`
}

// View projects the user into its public form. Roles come back sorted so two
// projections of the same record always compare equal.
func (u *User) View() UserView {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	sort.Strings(roles)
	return UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Roles:        roles,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
	}
}

// HasRole reports whether the user carries the given role name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}
