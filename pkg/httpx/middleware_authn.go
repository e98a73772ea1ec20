package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mayur-driod/FloodWatch/pkg/jwtx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

// AuthnMiddleware validates the bearer session token and injects the claims
// into the request context. Expired and invalid tokens both yield 401; the
// caller must re-authenticate to recover.
//
// observe, when non-nil, is called with the validation outcome ("valid",
// "expired", "invalid") for every presented token. Requests with no token at
// all are not observed; nothing was validated.
func AuthnMiddleware(v jwtx.Verifier, observe func(outcome string)) Middleware {
	if observe == nil {
		observe = func(string) {}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					observe("expired")
				} else {
					observe("invalid")
				}
				writeBearerError(w, "token verification failed")
				log.Warn("session token verify failed", "err", err)
				return
			}
			observe("valid")

			ctx = contextWithSession(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithSession(ctx context.Context, c jwtx.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
