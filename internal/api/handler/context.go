package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/middleware"
	"github.com/marketprime/marketplace-api/internal/core/domain"
)

// ctxPrincipal extracts the principal injected by the Auth middleware. A
// missing principal means the route was wired without the middleware, which
// is a server bug, but the caller still gets a clean 401 rather than a panic.
func ctxPrincipal(c echo.Context) (*domain.Principal, error) {
	p, _ := c.Get(middleware.PrincipalKey).(*domain.Principal)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no session")
	}
	return p, nil
}
