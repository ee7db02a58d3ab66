package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	clone := *u
	clone.ID = "user-" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type stubAdminRepo struct {
	byID   map[string]*domain.Admin
	nextID int
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{byID: make(map[string]*domain.Admin)}
}

func (r *stubAdminRepo) Create(_ context.Context, a *domain.Admin) (*domain.Admin, error) {
	r.nextID++
	clone := *a
	clone.ID = "admin-" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, a := range r.byID {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAdminRepo) FindByID(_ context.Context, id string) (*domain.Admin, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *a
	return &clone, nil
}

type stubRevocationStore struct {
	revoked map[string]time.Time
	err     error
}

func newStubRevocationStore() *stubRevocationStore {
	return &stubRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *stubRevocationStore) Revoke(_ context.Context, token string, until time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[token] = until
	return nil
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[token]
	return ok, nil
}

func newTestAuthService() (*AuthService, *stubUserRepo, *stubAdminRepo, *stubRevocationStore) {
	users := newStubUserRepo()
	admins := newStubAdminRepo()
	revoked := newStubRevocationStore()
	tm := NewTokenManager("secret", time.Hour, time.Hour)
	return NewAuthService(users, admins, tm, revoked, zerolog.Nop()), users, admins, revoked
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuthService_Signup(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	user, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("password stored unhashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Signup_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Signup(context.Background(), "", "a@b.c", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "pass"); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.Signup(context.Background(), "Alice2", "alice@example.com", "pass2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginUser(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Signup(context.Background(), "Bob", "bob@example.com", "s3cret"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, user, err := svc.LoginUser(context.Background(), "bob@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user == nil {
		t.Fatalf("expected token and user")
	}

	claims, err := svc.Tokens().Verify(token)
	if err != nil {
		t.Fatalf("verify minted token: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("token subject %s, want %s", claims.Subject, user.ID)
	}
	if claims.Admin {
		t.Fatalf("user login minted an admin token")
	}
}

func TestAuthService_LoginUser_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	_, _ = svc.Signup(context.Background(), "Bob", "bob@example.com", "goodpass")
	if _, _, err := svc.LoginUser(context.Background(), "bob@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_LoginUser_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	// User account existence is already public through signup, so the miss
	// stays distinguishable; admin logins collapse it instead.
	if _, _, err := svc.LoginUser(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_LoginAdmin(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "hunter2"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	token, admin, err := svc.LoginAdmin(context.Background(), "admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := svc.Tokens().Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !claims.Admin {
		t.Fatalf("admin login minted a user token")
	}
	if claims.Subject != admin.ID {
		t.Fatalf("token subject %s, want %s", claims.Subject, admin.ID)
	}
}

func TestAuthService_LoginAdmin_UnknownAccount(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	// Unknown admin must look identical to a wrong password.
	if _, _, err := svc.LoginAdmin(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_EnsureAdmin_Idempotent(t *testing.T) {
	svc, _, admins, _ := newTestAuthService()

	if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "pw"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(admins.byID) != 1 {
		t.Fatalf("expected 1 admin, got %d", len(admins.byID))
	}
}

func TestAuthService_Resolve_UserStoreFirst(t *testing.T) {
	svc, users, admins, _ := newTestAuthService()

	user, _ := users.Create(context.Background(), &domain.User{Name: "Carol", Email: "carol@example.com"})
	admin, _ := admins.Create(context.Background(), &domain.Admin{Email: "admin@example.com"})

	p, err := svc.Resolve(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	if p.Role != domain.RoleUser || p.ID != user.ID {
		t.Fatalf("unexpected principal: %+v", p)
	}

	p, err = svc.Resolve(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("resolve admin: %v", err)
	}
	if p.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", p.Role)
	}
}

func TestAuthService_Resolve_NotFound(t *testing.T) {
	svc, _, _, _ := newTestAuthService()

	if _, err := svc.Resolve(context.Background(), "ghost"); !errors.Is(err, domain.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _, _, revoked := newTestAuthService()

	_, _ = svc.Signup(context.Background(), "Dave", "dave@example.com", "pw")
	token, _, err := svc.LoginUser(context.Background(), "dave@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	isRevoked, err := svc.IsRevoked(context.Background(), token)
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if !isRevoked {
		t.Fatalf("token not revoked after logout")
	}
	if len(revoked.revoked) != 1 {
		t.Fatalf("expected 1 revocation entry, got %d", len(revoked.revoked))
	}
}

func TestAuthService_Logout_GarbageTokenIsNoop(t *testing.T) {
	svc, _, _, revoked := newTestAuthService()

	if err := svc.Logout(context.Background(), "not-a-token"); err != nil {
		t.Fatalf("logout of garbage token should not error: %v", err)
	}
	if len(revoked.revoked) != 0 {
		t.Fatalf("garbage token was revoked")
	}
}
