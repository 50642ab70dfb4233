package model

// UserRole identifies the capability set a user operates with.
type UserRole string

const (
	RoleDispatcher UserRole = "Dispatcher"
	RoleEMT        UserRole = "EMT"
	RoleSupervisor UserRole = "Supervisor"
)

// Valid reports whether the role is one of the recognized set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDispatcher, RoleEMT, RoleSupervisor:
		return true
	}
	return false
}

// User represents a system user. Accounts are immutable after creation:
// the role is fixed at signup and usernames are unique (case-sensitive).
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"-"`
	Role     UserRole `json:"role"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest represents account creation parameters
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=Dispatcher EMT Supervisor"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// TokenClaims are the identity claims carried in an access token.
type TokenClaims struct {
	UserID   int64
	Username string
	Role     UserRole
}
