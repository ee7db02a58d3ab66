package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/middleware"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
	"github.com/marketprime/marketplace-api/internal/core/service"
)

// AuthHandler serves the user-facing auth endpoints. Session tokens are
// delivered both in the body and as the userToken cookie, so browser and
// API clients work off the same login.
type AuthHandler struct {
	auth   ports.AuthService
	tokens *service.TokenManager
	jar    middleware.CookieJar
}

func NewAuthHandler(auth ports.AuthService, tokens *service.TokenManager, jar middleware.CookieJar) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, jar: jar}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user,omitempty"`
}

type principalResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	User    *domain.Principal `json:"user"`
}

// Signup registers a new user account.
//
// @Summary      Register a user account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.auth.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		Message: "account created",
		User:    user,
	})
}

// Login authenticates a user and starts a session.
//
// @Summary      Log in as a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]any
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.auth.LoginUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.jar.Set(c, middleware.CookieUserToken, token, h.tokens.UserTTL())
	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Message: "login successful",
		Token:   token,
		User:    user,
	})
}

// Logout revokes the current session token, if any, and clears the user
// cookie. Succeeds even without a valid session so clients can always reset.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := middleware.ExtractToken(c); ok {
		if err := h.auth.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	h.jar.Clear(c, middleware.CookieUserToken)
	return c.JSON(http.StatusOK, authResponse{Success: true, Message: "logged out"})
}

// Verify confirms the session token resolves to a live account.
//
// @Summary      Verify the current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]any
// @Router       /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{
		Success: true,
		Message: "session valid",
		User:    p,
	})
}

// Me returns the acting principal.
//
// @Summary      Get the current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  map[string]any
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalResponse{Success: true, User: p})
}
