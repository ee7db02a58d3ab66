package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// RevocationStore records logged-out tokens until their natural expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AuthService implements signup, the two login flows, logout revocation, and
// principal resolution.
type AuthService struct {
	users   ports.UserRepository
	admins  ports.AdminRepository
	tokens  *TokenManager
	revoked RevocationStore
	logger  zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	admins ports.AdminRepository,
	tokens *TokenManager,
	revoked RevocationStore,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{users: users, admins: admins, tokens: tokens, revoked: revoked, logger: logger}
}

// Tokens exposes the token manager for the auth middleware and handlers.
func (s *AuthService) Tokens() *TokenManager {
	return s.tokens
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", email).Msg("user registered")
	return user, nil
}

func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	// An unknown email surfaces as 404 here, unlike LoginAdmin. User account
	// existence is already public through signup's duplicate-email conflict,
	// so collapsing it would not hide anything; admin accounts have no such
	// surface and stay unconfirmed.
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the admin account exists.
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(admin.ID, true)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// Logout revokes the presented token until its embedded expiry so a cleared
// cookie cannot be replayed. Tokens that no longer verify need no revocation.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn().Err(err).Msg("failed to revoke session token")
		return err
	}
	return nil
}

// Resolve maps a verified token subject to a Principal. The user store is
// consulted first, then the admin store; the role follows from whichever
// store matched. This ordering is the documented contract, not an accident:
// an identity present in both stores resolves as a user.
func (s *AuthService) Resolve(ctx context.Context, subjectID string) (*domain.Principal, error) {
	user, err := s.users.FindByID(ctx, subjectID)
	if err == nil {
		return &domain.Principal{
			ID:    user.ID,
			Role:  domain.RoleUser,
			Name:  user.Name,
			Email: user.Email,
		}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrInvalidID) {
		return nil, err
	}

	admin, err := s.admins.FindByID(ctx, subjectID)
	if err == nil {
		return &domain.Principal{
			ID:    admin.ID,
			Role:  domain.RoleAdmin,
			Email: admin.Email,
		}, nil
	}
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
		return nil, domain.ErrPrincipalNotFound
	}
	return nil, err
}

// EnsureAdmin seeds the admin account from configuration. Existing accounts
// are left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.logger.Warn().Msg("admin seed skipped: ADMIN_EMAIL or ADMIN_PASS not set")
		return nil
	}

	if _, err := s.admins.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := s.admins.Create(ctx, &domain.Admin{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return err
	}

	s.logger.Info().Str("email", email).Msg("seeded admin account")
	return nil
}

// IsRevoked reports whether a token has been logged out. Exposed for the auth
// middleware.
func (s *AuthService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.revoked.IsRevoked(ctx, token)
}
