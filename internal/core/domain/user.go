package domain

import "time"

// Role identifies what an account is allowed to do. The set is closed; a new
// role requires a matching entry in the permission matrix.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleScheduler Role = "scheduler"
	RoleDriver    Role = "driver"
	RoleReviewer  Role = "reviewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleScheduler, RoleDriver, RoleReviewer:
		return true
	}
	return false
}

// Status is the lifecycle state of an account. Only active accounts can log in.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// User models a persisted account. PasswordHash never leaves the process:
// it is excluded from JSON and from every SafeUser projection.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SafeUser is the externally observable projection of a User. It has no field
// that could carry secret material, so it is safe to serialize anywhere.
type SafeUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Safe projects the user into its SafeUser form.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SessionUser is the identity reconstructed from a session token on each
// request. Name, email and avatar travel as profile claims; id and role are
// the authoritative custom claims.
type SessionUser struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// Session is what request handlers see for an authenticated caller.
type Session struct {
	User SessionUser `json:"user"`
}

// SessionUser converts the safe projection into the shape carried by tokens.
func (u SafeUser) SessionUser() SessionUser {
	return SessionUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
	}
}
