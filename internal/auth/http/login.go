package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

type LoginHandler struct {
	CredentialService *service.CredentialService
	SessionService    *service.SessionService
	Metrics           *metrics.Collector
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	principal, err := h.CredentialService.Verify(ctx, req.Email, req.Password)
	switch {
	case service.IsCredentialFailure(err):
		// The internal kind is logged for operators; the response is always
		// the same generic message.
		log.Info("login rejected", "kind", err.Error())
		h.Metrics.RecordAuthAttempt("password", "rejected")
		httpx.WriteError(w, http.StatusUnauthorized, genericAuthFailure)
		return
	case errors.Is(err, store.ErrUnavailable):
		h.Metrics.RecordAuthAttempt("password", "error")
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
		return
	case err != nil:
		log.Error("login failed", "err", err)
		h.Metrics.RecordAuthAttempt("password", "error")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.SessionService.IssueFor(ctx, principal.UserID)
	if err != nil {
		log.Error("failed to issue session after login", "user_id", principal.UserID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Metrics.RecordAuthAttempt("password", "success")
	h.Metrics.RecordTokenIssued()
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:  token,
		UserID: principal.UserID,
	})
}
