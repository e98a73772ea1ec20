package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mayur-driod/FloodWatch/pkg/jwtx"
)

func TestAuthnMiddlewareObservesOutcomes(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.NewHS256([]byte("authn-test-secret"), "t", nil)
	require.NoError(t, err)

	var outcomes []string
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), AuthnMiddleware(codec, func(outcome string) {
		outcomes = append(outcomes, outcome)
	}))

	do := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	valid, err := codec.Sign(jwtx.NewSessionClaims("u1", "", "", []string{"user"}, time.Hour, "t", time.Now()))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, do(valid).Code)

	expired, err := codec.Sign(jwtx.NewSessionClaims("u1", "", "", []string{"user"}, time.Hour, "t", time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)
	rec := do(expired)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")

	require.Equal(t, http.StatusUnauthorized, do("not-a-token").Code)

	// No token presented means nothing was validated, so nothing is observed.
	require.Equal(t, http.StatusUnauthorized, do("").Code)

	require.Equal(t, []string{"valid", "expired", "invalid"}, outcomes)
}

func TestAuthnMiddlewareNilObserver(t *testing.T) {
	t.Parallel()

	codec, err := jwtx.NewHS256([]byte("authn-test-secret"), "t", nil)
	require.NoError(t, err)

	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), AuthnMiddleware(codec, nil))

	token, err := codec.Sign(jwtx.NewSessionClaims("u1", "", "", nil, time.Hour, "t", time.Now()))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
