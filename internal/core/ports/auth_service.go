package ports

import (
	"context"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// AuthService covers account registration, the two login flows, logout
// revocation, and token-subject resolution for the auth middleware.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*domain.User, error)
	// LoginUser authenticates against the user store and mints a user-scoped
	// session token (7 day lifetime).
	LoginUser(ctx context.Context, email, password string) (string, *domain.User, error)
	// LoginAdmin authenticates against the admin store and mints an
	// admin-scoped session token (24 hour lifetime).
	LoginAdmin(ctx context.Context, email, password string) (string, *domain.Admin, error)
	// Logout revokes a still-valid token so it cannot be replayed after the
	// cookie is cleared. Revoking an already-expired token is a no-op.
	Logout(ctx context.Context, token string) error
	// Resolve maps a verified token subject to a Principal. The user store is
	// consulted first, then the admin store; the role follows from whichever
	// store matched. Returns domain.ErrPrincipalNotFound when neither does.
	Resolve(ctx context.Context, subjectID string) (*domain.Principal, error)
}
