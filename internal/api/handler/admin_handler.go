package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/middleware"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
	"github.com/marketprime/marketplace-api/internal/core/service"
)

// AdminHandler serves the moderation-account auth endpoints. It mirrors
// AuthHandler but works the adminToken cookie slot and the shorter admin
// session lifetime.
type AdminHandler struct {
	auth   ports.AuthService
	tokens *service.TokenManager
	jar    middleware.CookieJar
}

func NewAdminHandler(auth ports.AuthService, tokens *service.TokenManager, jar middleware.CookieJar) *AdminHandler {
	return &AdminHandler{auth: auth, tokens: tokens, jar: jar}
}

type adminLoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Token   string        `json:"token,omitempty"`
	Admin   *domain.Admin `json:"admin,omitempty"`
}

// Login authenticates a moderation account and starts an admin session.
//
// @Summary      Log in as an admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  adminLoginResponse
// @Failure      401   {object}  map[string]any
// @Router       /admin/login [post]
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, admin, err := h.auth.LoginAdmin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.jar.Set(c, middleware.CookieAdminToken, token, h.tokens.AdminTTL())
	return c.JSON(http.StatusOK, adminLoginResponse{
		Success: true,
		Message: "admin login successful",
		Token:   token,
		Admin:   admin,
	})
}

// Logout revokes the admin session token and clears the admin cookie.
//
// @Summary      Log out of the admin session
// @Tags         admin
// @Produce      json
// @Success      200  {object}  adminLoginResponse
// @Router       /admin/logout [post]
func (h *AdminHandler) Logout(c echo.Context) error {
	if token, ok := middleware.ExtractToken(c); ok {
		if err := h.auth.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	h.jar.Clear(c, middleware.CookieAdminToken)
	return c.JSON(http.StatusOK, adminLoginResponse{Success: true, Message: "logged out"})
}

// Verify confirms the session belongs to a moderation account.
//
// @Summary      Verify the admin session
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]any
// @Failure      403  {object}  map[string]any
// @Router       /admin/verify [get]
func (h *AdminHandler) Verify(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{
		Success: true,
		Message: "admin session valid",
		User:    p,
	})
}
