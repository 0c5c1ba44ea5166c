package models

import (
	"strings"
	"time"
)

// Role gates admin-only operations
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole defaults anything but "admin" to the user role.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// User is a marketplace account as returned by the API.
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	RiskAppetite RiskLevel  `json:"risk_appetite,omitempty"`
	Balance      float64    `json:"balance"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns "First Last", falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Clone returns a copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// SignupRequest carries the fields needed to register a new account.
type SignupRequest struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// Validate checks the signup form.
func (r *SignupRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return &ValidationError{Field: "first_name", Message: "first name is required"}
	case strings.TrimSpace(r.Email) == "":
		return &ValidationError{Field: "email", Message: "email is required"}
	case len(r.Password) < 6:
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if r.RiskLevel == "" {
		r.RiskLevel = RiskModerate
	}
	if !r.RiskLevel.Valid() {
		return &ValidationError{Field: "risk_level", Message: "risk level must be low, moderate or high"}
	}
	return nil
}
