package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime for session tokens. Matches the
// 30-day window most browser session integrations expect; override per-service
// via configuration.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionClaims is the signed payload of a session token: who the user is,
// how to display them, and what roles they carry. Keeping changes additive
// preserves compatibility with outstanding tokens.
type SessionClaims struct {
	jwt.RegisteredClaims

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Avatar is an opaque reference to the user's avatar image.
	Avatar string `json:"avatar,omitempty"`

	// Roles is the list of role names granted to the user at issuance.
	// Authorization decisions downstream key off this list.
	Roles []string `json:"roles,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session token.
func NewSessionClaims(
	subject, name, avatar string,
	roles []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) SessionClaims {
	return SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Name:   name,
		Avatar: avatar,
		Roles:  roles,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
