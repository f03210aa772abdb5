package domain

// Role names follow the ROLE_* convention used across the API. The set is
// pre-seeded at startup; the auth workflow only ever reads it.
const (
	RoleTenant = "ROLE_TENANT"
	RoleOwner  = "ROLE_OWNER"
	RoleAdmin  = "ROLE_ADMIN"

	// RolePrefix is prepended to the single-role signup field after
	// uppercasing, so "owner" resolves to "ROLE_OWNER".
	RolePrefix = "ROLE_"
)

// SeedRoles is the set expected to exist before any signup occurs.
var SeedRoles = []string{RoleTenant, RoleOwner, RoleAdmin}

// Role is a named permission group.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
