package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// The two credential slots. Each login flow writes its own slot so a browser
// can hold a user and an admin session side by side.
const (
	CookieAdminToken = "adminToken"
	CookieUserToken  = "userToken"
)

// CookieJar writes and clears the session cookies. Flag policy follows the
// deployment environment: production runs cross-site behind TLS
// (Secure, SameSite=None), everything else stays lax and insecure so local
// frontends work without certificates.
type CookieJar struct {
	production bool
}

func NewCookieJar(env string) CookieJar {
	return CookieJar{production: env == "production"}
}

// Set stores a token in the named slot as an HTTP-only cookie.
func (j CookieJar) Set(c echo.Context, slot, token string, ttl time.Duration) {
	c.SetCookie(j.cookie(slot, token, time.Now().Add(ttl)))
}

// Clear expires the named slot immediately.
func (j CookieJar) Clear(c echo.Context, slot string) {
	c.SetCookie(j.cookie(slot, "", time.Unix(0, 0)))
}

func (j CookieJar) cookie(slot, token string, expires time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if j.production {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     slot,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   j.production,
		SameSite: sameSite,
	}
}
