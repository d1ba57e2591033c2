// Package auth implements users, password verification and JWT issuing.
package auth

import (
	"context"
	"strings"

	"freshmart/internal/core/apperror"
	"freshmart/internal/core/entity"
)

// Known roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// ValidRole reports whether the role is a known value.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// User is an account that can authenticate against the API.
type User struct {
	entity.BaseEntity

	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`

	// PasswordHash is a bcrypt hash, never exposed in JSON
	PasswordHash string `db:"password_hash" json:"-"`

	Roles []string `db:"roles" json:"roles"`

	// Active accounts may log in; deactivated ones keep their history
	Active bool `db:"active" json:"active"`
}

// NewUser creates a new user with generated ID.
func NewUser(email, name string, roles ...string) *User {
	return &User{
		BaseEntity: entity.NewBaseEntity(),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Name:       name,
		Roles:      roles,
		Active:     true,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required").
			WithDetail("field", "email")
	}
	if u.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	for _, role := range u.Roles {
		if !ValidRole(role) {
			return apperror.NewValidation("unknown role").
				WithDetail("field", "roles").
				WithDetail("value", role)
		}
	}
	return nil
}

// HasRole checks role membership.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
