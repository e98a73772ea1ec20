package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

// RoleGrantHandler grants a role to a user. Runs behind RequireAnyRole, so
// only admins reach it.
type RoleGrantHandler struct {
	Store store.Store
}

func (h *RoleGrantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req roleGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "role is required")
		return
	}

	userID := r.PathValue("id")
	if _, err := h.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "unknown user")
			return
		}
		log.Error("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	role, err := h.Store.Roles().GetRoleByName(ctx, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "unknown role")
			return
		}
		log.Error("failed to load role", "role", req.Role, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	err = h.Store.Roles().GrantRole(ctx, userID, role.ID)
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		// Granting twice is fine.
	case errors.Is(err, store.ErrUnavailable):
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
		return
	case err != nil:
		log.Error("role grant failed", "user_id", userID, "role", req.Role, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("role granted",
		"user_id", userID,
		"role", req.Role,
		"granted_by", httpx.UserIDFromCtx(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}
