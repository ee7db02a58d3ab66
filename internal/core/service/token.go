package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marketprime/marketplace-api/internal/core/domain"
)

const (
	defaultUserTokenTTL  = 7 * 24 * time.Hour
	defaultAdminTokenTTL = 24 * time.Hour
)

// SessionClaims is the payload baked into every session token. Admin marks
// which token namespace minted it; resolution still derives the effective
// role from the credential stores, so the flag is informational for clients.
type SessionClaims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager mints and verifies HS256 session tokens. Two TTL policies
// apply: user sessions run a week, admin sessions a day.
type TokenManager struct {
	secret   []byte
	userTTL  time.Duration
	adminTTL time.Duration
}

// NewTokenManager builds a manager with the given TTLs. A zero TTL selects
// the default for that namespace.
func NewTokenManager(secret string, userTTL, adminTTL time.Duration) *TokenManager {
	if userTTL == 0 {
		userTTL = defaultUserTokenTTL
	}
	if adminTTL == 0 {
		adminTTL = defaultAdminTokenTTL
	}
	return &TokenManager{secret: []byte(secret), userTTL: userTTL, adminTTL: adminTTL}
}

// UserTTL returns the lifetime of user-scoped tokens.
func (tm *TokenManager) UserTTL() time.Duration { return tm.userTTL }

// AdminTTL returns the lifetime of admin-scoped tokens.
func (tm *TokenManager) AdminTTL() time.Duration { return tm.adminTTL }

// Issue signs a session token for the subject and returns it with its expiry.
func (tm *TokenManager) Issue(subjectID string, admin bool) (string, time.Time, error) {
	ttl := tm.userTTL
	if admin {
		ttl = tm.adminTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &SessionClaims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a raw token string.
//
// Browser clients are known to send the literal strings "null" and
// "undefined" when their stored token is absent; those are rejected as
// malformed input before any signature work, alongside the empty string.
func (tm *TokenManager) Verify(raw string) (*SessionClaims, error) {
	if IsPlaceholderToken(raw) {
		return nil, domain.ErrTokenMalformed
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// IsPlaceholderToken reports whether raw is one of the values clients send
// when they have no real token.
func IsPlaceholderToken(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "null", "undefined":
		return true
	}
	return false
}
