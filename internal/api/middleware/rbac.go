package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// AdminOnly passes through only when the already-resolved principal holds the
// admin role. It does no token work of its own and must compose after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, _ := c.Get(PrincipalKey).(*domain.Principal)
			if principal == nil || !principal.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "access denied, admin privileges required")
			}
			return next(c)
		}
	}
}
