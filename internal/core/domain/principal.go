package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("account already exists")
var ErrUserNotFound = errors.New("account not found")
var ErrPrincipalNotFound = errors.New("no account matches token subject")
var ErrUnauthenticated = errors.New("not authenticated")
var ErrForbidden = errors.New("access forbidden")

// Token verification failures, in increasing order of "the caller actually
// sent something": absent or placeholder input, bad signature, past expiry.
var ErrTokenMalformed = errors.New("token missing or malformed")
var ErrTokenInvalid = errors.New("token signature invalid")
var ErrTokenExpired = errors.New("token expired")

// User is a self-registered account. Users own the listings and leads they
// submit and authenticate through the user token namespace.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Admin is a moderation account. Admins are seeded from configuration rather
// than registered through the API, and authenticate through their own token
// namespace with a shorter session lifetime.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the resolved identity attached to a request after the auth
// middleware has verified a token and matched its subject against a credential
// store. Role is derived from which store matched: the user store is consulted
// first, then the admin store. It is never taken from the token itself.
type Principal struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// IsAdmin reports whether the principal resolved through the admin store.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
