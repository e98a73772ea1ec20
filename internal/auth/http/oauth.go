package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/oauth"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/cryptox"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

const (
	stateCookie    = "fw_oauth_state"
	stateCookieTTL = 10 * time.Minute
)

type OAuthHandler struct {
	Providers        oauth.Registry
	IdentityService  *service.IdentityService
	ReconcileService *service.ReconcileService
	SessionService   *service.SessionService
	Store            store.Store
	Metrics          *metrics.Collector
}

// HandleLogin starts the provider flow: mint a CSRF state value, pin it in a
// short-lived cookie, and send the browser to the provider.
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.Providers.Get(r.PathValue("provider"))
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown provider")
		return
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/v1/auth",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.LoginURL(state), http.StatusFound)
}

// HandleCallback completes the provider flow: check state, exchange the code,
// normalize the profile, reconcile it onto an account, and issue a session.
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	providerName := r.PathValue("provider")
	provider, ok := h.Providers.Get(providerName)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown provider")
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		httpx.WriteError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing code")
		return
	}

	ex, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("code exchange failed", "provider", providerName, "err", err)
		h.Metrics.RecordAuthAttempt(providerName, "error")
		httpx.WriteError(w, http.StatusBadGateway, "provider exchange failed")
		return
	}

	ident, err := h.IdentityService.Normalize(providerName, ex.RawProfile)
	if err != nil {
		log.Warn("malformed provider response", "provider", providerName, "err", err)
		h.Metrics.RecordAuthAttempt(providerName, "rejected")
		httpx.WriteError(w, http.StatusBadGateway, "provider returned unusable profile")
		return
	}
	ident.AccessToken = ex.AccessToken
	ident.RefreshToken = ex.RefreshToken
	ident.SessionState = ex.SessionState

	res, err := h.ReconcileService.Reconcile(ctx, ident)
	switch {
	case errors.Is(err, store.ErrUnavailable):
		h.Metrics.RecordAuthAttempt(providerName, "error")
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
		return
	case err != nil:
		log.Error("reconciliation failed", "provider", providerName, "err", err)
		h.Metrics.RecordAuthAttempt(providerName, "error")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Repeat sign-ins keep the reconciler write-free; the per-login
	// bookkeeping lives out here instead.
	if res.Path == service.ReconcilePathFast {
		err := h.Store.Identities().UpdateTokens(ctx,
			ident.Provider, ident.SubjectID,
			ident.AccessToken, ident.RefreshToken, ident.SessionState)
		if err != nil {
			log.Warn("failed to refresh provider tokens", "provider", providerName, "err", err)
		}
	}
	if err := h.Store.Users().TouchLastSeen(ctx, res.Principal.UserID, time.Now()); err != nil {
		log.Warn("failed to touch last seen", "user_id", res.Principal.UserID, "err", err)
	}

	token, err := h.SessionService.IssueFor(ctx, res.Principal.UserID)
	if err != nil {
		log.Error("failed to issue session after callback", "user_id", res.Principal.UserID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// State cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/v1/auth", MaxAge: -1})

	h.Metrics.RecordAuthAttempt(providerName, "success")
	h.Metrics.RecordReconciliation(res.Path)
	h.Metrics.RecordTokenIssued()
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		UserID:    res.Principal.UserID,
		IsNewUser: res.Principal.IsNewUser,
	})
}
