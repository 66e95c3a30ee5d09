// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the loyalty core and depends on nothing.
package domain

import (
	"strings"
	"time"
)

// ─── Account Types ──────────────────────────────────────────────────────────

// Role distinguishes salon customers from administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Account is a registered user in the account directory.
// The ID is immutable; profile fields may change.
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	JoinDate string `json:"joinDate"` // YYYY-MM-DD

	// PasswordHash is only populated when password verification is enabled.
	PasswordHash string `json:"passwordHash,omitempty"`
}

// IsAdmin reports whether the account has the admin role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// Public returns a copy safe to hand to presentation code.
func (a Account) Public() Account {
	a.PasswordHash = ""
	return a
}

// SameEmail compares two addresses the way the directory does: case-insensitively.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// ─── Dates ──────────────────────────────────────────────────────────────────

// FormatDate renders t as a calendar date (YYYY-MM-DD) in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
