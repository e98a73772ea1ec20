package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("jwtx: empty signing secret")

	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// Signer is anything that can sign session claims into a compact token.
type Signer interface {
	Sign(SessionClaims) (string, error)
}

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (SessionClaims, error)
}

// HS256 signs and verifies session tokens with a single process-wide secret.
// Rotating the secret invalidates every outstanding token; that is the
// accepted operational trade-off for a symmetric scheme.
type HS256 struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewHS256 builds an HS256 codec. The secret must be non-empty; its absence
// is a startup-fatal configuration error, not something to paper over with a
// generated default. A nil now falls back to time.Now.
func NewHS256(secret []byte, issuer string, now func() time.Time) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if now == nil {
		now = time.Now
	}
	return &HS256{secret: secret, issuer: issuer, now: now}, nil
}

// Sign turns the claims into a signed compact token string.
func (h *HS256) Sign(claims SessionClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

// Verify validates the token string and returns its parsed claims.
//
// Expiry is exclusive: a token inspected exactly at its expiry instant is
// already expired.
func (h *HS256) Verify(tokenStr string) (SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.now),
	)

	var claims SessionClaims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return SessionClaims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return SessionClaims{}, ErrInvalidSig
		default:
			return SessionClaims{}, ErrMalformed
		}
	}
	if !token.Valid {
		return SessionClaims{}, ErrMalformed
	}

	if h.issuer != "" && claims.Issuer != h.issuer {
		return SessionClaims{}, ErrIssuer
	}

	return claims, nil
}
