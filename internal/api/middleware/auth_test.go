package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/service"
)

// stubResolver resolves a fixed set of subjects and tracks revocations.
type stubResolver struct {
	users      map[string]*domain.Principal
	admins     map[string]*domain.Principal
	revoked    map[string]bool
	revokedErr error
}

func newStubResolver() *stubResolver {
	return &stubResolver{
		users:   make(map[string]*domain.Principal),
		admins:  make(map[string]*domain.Principal),
		revoked: make(map[string]bool),
	}
}

// Resolve mirrors the production contract: user store first, then admin.
func (r *stubResolver) Resolve(_ context.Context, subjectID string) (*domain.Principal, error) {
	if p, ok := r.users[subjectID]; ok {
		clone := *p
		return &clone, nil
	}
	if p, ok := r.admins[subjectID]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, domain.ErrPrincipalNotFound
}

func (r *stubResolver) IsRevoked(_ context.Context, token string) (bool, error) {
	if r.revokedErr != nil {
		return false, r.revokedErr
	}
	return r.revoked[token], nil
}

func newAuthFixture(t *testing.T) (*service.TokenManager, *stubResolver) {
	t.Helper()
	resolver := newStubResolver()
	resolver.users["user-1"] = &domain.Principal{ID: "user-1", Role: domain.RoleUser, Name: "Alice", Email: "alice@example.com"}
	resolver.admins["admin-1"] = &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin, Email: "admin@example.com"}
	return service.NewTokenManager("secret", time.Hour, time.Hour), resolver
}

func mustIssue(t *testing.T, tm *service.TokenManager, subject string, admin bool) string {
	t.Helper()
	token, _, err := tm.Issue(subject, admin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, tm *service.TokenManager, resolver *stubResolver, req *http.Request) (*httptest.ResponseRecorder, *domain.Principal) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *domain.Principal
	handler := Auth(tm, resolver)(func(c echo.Context) error {
		got, _ = c.Get(PrincipalKey).(*domain.Principal)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, got
}

func TestAuth_BearerToken(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, tm, "user-1", false))

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" || principal.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAuth_UserCookieFallback(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: mustIssue(t, tm, "user-1", false)})

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAuth_AdminCookiePreferredOverUserCookie(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: mustIssue(t, tm, "user-1", false)})
	req.AddCookie(&http.Cookie{Name: CookieAdminToken, Value: mustIssue(t, tm, "admin-1", true)})

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "admin-1" || principal.Role != domain.RoleAdmin {
		t.Fatalf("admin cookie should win: %+v", principal)
	}
}

func TestAuth_BearerOverridesCookies(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, tm, "user-1", false))
	req.AddCookie(&http.Cookie{Name: CookieAdminToken, Value: mustIssue(t, tm, "admin-1", true)})

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("bearer header should override cookies: %+v", principal)
	}
}

func TestAuth_NonBearerHeaderFallsThroughToCookie(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: mustIssue(t, tm, "user-1", false)})

		rec, principal := runAuth(t, tm, resolver, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("header %q: expected cookie auth, got %d", header, rec.Code)
		}
		if principal == nil || principal.ID != "user-1" {
			t.Fatalf("header %q: unexpected principal %+v", header, principal)
		}
	}
}

func TestAuth_PlaceholderBearerNotRescuedByCookie(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer null")
	req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: mustIssue(t, tm, "user-1", false)})

	rec, _ := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RevocationStoreErrorFailsOpen(t *testing.T) {
	tm, resolver := newAuthFixture(t)
	resolver.revokedErr = errors.New("store unavailable")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, tm, "user-1", false))

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected fail-open 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestAuth_PlaceholderCookieIgnored(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	for _, value := range []string{"null", "undefined", ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: value})

		rec, _ := runAuth(t, tm, resolver, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("placeholder %q: expected 401, got %d", value, rec.Code)
		}
	}
}

func TestAuth_PlaceholderAdminCookieFallsThroughToUserCookie(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAdminToken, Value: "null"})
	req.AddCookie(&http.Cookie{Name: CookieUserToken, Value: mustIssue(t, tm, "user-1", false)})

	rec, principal := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("expected user principal, got %+v", principal)
	}
}

func TestAuth_NoToken(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	rec, _ := runAuth(t, tm, resolver, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	_, resolver := newAuthFixture(t)
	expired := service.NewTokenManager("secret", -time.Minute, -time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, expired, "user-1", false))

	rec, _ := runAuth(t, service.NewTokenManager("secret", time.Hour, time.Hour), resolver, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ValidTokenUnknownAccount(t *testing.T) {
	tm, resolver := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mustIssue(t, tm, "ghost", false))

	rec, _ := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RevokedToken(t *testing.T) {
	tm, resolver := newAuthFixture(t)
	token := mustIssue(t, tm, "user-1", false)
	resolver.revoked[token] = true

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, _ := runAuth(t, tm, resolver, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", rec.Code)
	}
}
