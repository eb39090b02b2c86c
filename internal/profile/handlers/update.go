package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	"padel-server/internal/middleware"
	"padel-server/internal/profile"
	"padel-server/internal/session"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

type UpdateRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type UpdateHandler struct {
	accounts *account.Service
	profiles *profile.Service
	sessions *session.Manager
}

func NewUpdateHandler(accounts *account.Service, profiles *profile.Service, sessions *session.Manager) *UpdateHandler {
	return &UpdateHandler{
		accounts: accounts,
		profiles: profiles,
		sessions: sessions,
	}
}

// ServeHTTP applies a profile edit. Username and email conflicts come back
// attributed to their field so the form stays editable; the stored session is
// refreshed after a successful save.
func (h *UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "profile_update")

	if r.Method != http.MethodPut {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("no user claims found in context"))
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.Validation("invalid JSON payload"))
		return
	}

	ctx := r.Context()

	if _, err := h.profiles.Update(ctx, claims.AccountID, req.Username, req.FullName); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	email := claims.Email
	if req.Email != "" && req.Email != claims.Email {
		if err := h.accounts.UpdateEmail(ctx, claims.AccountID, req.Email); err != nil {
			response.Error(w, r, logger, err)
			return
		}
		email = req.Email
		logger.Info("Account email changed", "account_id", claims.AccountID)
	}

	user, err := h.sessions.Refresh(ctx, session.Identity{ID: claims.AccountID, Email: email})
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Profile updated", "account_id", claims.AccountID)
	response.Success(w, http.StatusOK, user)
}
