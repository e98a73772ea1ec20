package http

import (
	"net/http"

	"github.com/mayur-driod/FloodWatch/internal/auth/store"
	"github.com/mayur-driod/FloodWatch/pkg/httpx"
	"github.com/mayur-driod/FloodWatch/pkg/slogx"
)

type UserInfoHandler struct {
	Store store.Store
}

// ServeHTTP returns the authenticated user's persisted profile and roles —
// as opposed to GET /v1/session, which reflects the token snapshot.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromCtx(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "no session")
		return
	}

	user, err := h.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		log.Warn("failed to load user", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	roles, err := h.Store.Roles().ListRoleNamesForUser(ctx, userID)
	if err != nil {
		log.Warn("failed to load roles", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Avatar:   user.Avatar,
		Roles:    roles,
		LastSeen: user.LastSeen,
	})
}
