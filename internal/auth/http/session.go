package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/jwtx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

type SessionHandler struct {
	SessionService *service.SessionService
	Metrics        *metrics.Collector
}

// HandleGet returns the claims of the presented session token. Runs behind
// AuthnMiddleware, so the claims in context are already verified.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(httpx.CtxKeyClaims).(jwtx.SessionClaims)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:    claims.Subject,
		Name:      claims.Name,
		Avatar:    claims.Avatar,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// HandleRefresh exchanges the presented token for one re-derived from
// persisted state. This is the only path by which role changes reach an
// existing session.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token, err := h.SessionService.Refresh(ctx, bearerToken(r))
	switch {
	case errors.Is(err, service.ErrSessionUserGone):
		httpx.WriteError(w, http.StatusUnauthorized, "account no longer exists")
		return
	case errors.Is(err, store.ErrUnavailable):
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
		return
	case err != nil:
		log.Error("session refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Metrics.RecordTokenIssued()
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:  token,
		UserID: httpx.UserIDFromCtx(ctx),
	})
}

// ProfileHandler persists a display-field change and hands back a re-signed
// token carrying it. Roles are not touchable through this path.
type ProfileHandler struct {
	SessionService *service.SessionService
	Store          store.Store
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil && req.Avatar == nil {
		httpx.WriteError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	userID := httpx.UserIDFromCtx(ctx)
	if err := h.Store.Users().UpdateProfile(ctx, userID, req.Name, req.Avatar); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
			return
		}
		log.Error("profile update failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.SessionService.MergeUpdate(bearerToken(r), req.Name, req.Avatar)
	if err != nil {
		log.Error("token merge failed", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:  token,
		UserID: userID,
	})
}

// bearerToken extracts the raw token for handlers that re-sign it. The
// middleware has already verified it by the time these run.
func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
