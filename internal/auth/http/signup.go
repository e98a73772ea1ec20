package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mayur-driod/FloodWatch/internal/auth/metrics"
	"github.com/mayur-driod/FloodWatch/internal/auth/service"
	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/cryptox"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

type SignupHandler struct {
	ReconcileService *service.ReconcileService
	SessionService   *service.SessionService
	Metrics          *metrics.Collector
}

func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	principal, err := h.ReconcileService.SignUp(ctx, req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		h.Metrics.RecordAuthAttempt("password", "rejected")
		httpx.WriteError(w, http.StatusConflict, "email already in use")
		return
	case errors.Is(err, cryptox.ErrPasswordTooShort):
		h.Metrics.RecordAuthAttempt("password", "rejected")
		httpx.WriteError(w, http.StatusBadRequest, "password too short")
		return
	case errors.Is(err, store.ErrUnavailable):
		h.Metrics.RecordAuthAttempt("password", "error")
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
		return
	case err != nil:
		log.Error("signup failed", "err", err)
		h.Metrics.RecordAuthAttempt("password", "error")
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.SessionService.IssueFor(ctx, principal.UserID)
	if err != nil {
		log.Error("failed to issue session after signup", "user_id", principal.UserID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Metrics.RecordAuthAttempt("password", "success")
	h.Metrics.RecordTokenIssued()
	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{
		Token:     token,
		UserID:    principal.UserID,
		IsNewUser: true,
	})
}
