package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/metrics"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/service"
	"github.com/marketprime/marketplace-api/pkg/logger"
)

// PrincipalKey is the echo context key the resolved principal is stored under.
const PrincipalKey = "principal"

// TokenVerifier validates a raw session token.
type TokenVerifier interface {
	Verify(raw string) (*service.SessionClaims, error)
}

// PrincipalResolver maps a verified token subject to a principal and answers
// revocation queries. Implemented by service.AuthService.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subjectID string) (*domain.Principal, error)
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Auth resolves the acting principal for a request and injects it into the
// echo context.
//
// Token extraction order: an explicit bearer header wins outright; otherwise
// the adminToken cookie is tried before the userToken cookie. Placeholder
// values ("null", "undefined", empty) are treated as no token at all.
//
// The verified subject is resolved against the credential stores (user store
// first, then admin store) so the role follows from whichever store matched,
// never from a claim in the token.
func Auth(tokens TokenVerifier, resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := ExtractToken(c)
			if !ok {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token missing")
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token invalid or expired")
			}

			// Revocation checks fail open: an unavailable store must not take
			// every authenticated route down with it, but it has to be visible.
			revoked, err := resolver.IsRevoked(c.Request().Context(), token)
			if err != nil {
				log := logger.Get()
				log.Warn().Err(err).Msg("revocation check failed, allowing token")
			} else if revoked {
				metrics.AuthFailuresTotal.WithLabelValues("revoked_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, session ended")
			}

			principal, err := resolver.Resolve(c.Request().Context(), claims.Subject)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("principal_not_found").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, account not found")
			}

			c.Set(PrincipalKey, principal)
			return next(c)
		}
	}
}

// ExtractToken pulls the candidate session token from the request. Reports
// false when nothing usable is present.
//
// Only the Bearer scheme claims the Authorization header: a Bearer header
// with a placeholder value is not rescued by cookies, while headers carrying
// another scheme (Basic and friends) are ignored and the cookies still apply.
func ExtractToken(c echo.Context) (string, bool) {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if service.IsPlaceholderToken(parts[1]) {
				return "", false
			}
			return parts[1], true
		}
	}

	for _, slot := range []string{CookieAdminToken, CookieUserToken} {
		if cookie, err := c.Cookie(slot); err == nil && !service.IsPlaceholderToken(cookie.Value) {
			return cookie.Value, true
		}
	}
	return "", false
}
