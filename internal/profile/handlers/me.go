package handlers

import (
	"log/slog"
	"net/http"

	"padel-server/internal/middleware"
	"padel-server/internal/session"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

type MeHandler struct {
	sessions *session.Manager
}

func NewMeHandler(sessions *session.Manager) *MeHandler {
	return &MeHandler{sessions: sessions}
}

// ServeHTTP returns the session user for the authenticated account,
// rebuilding it from the profile row when the stored session has expired.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "me")

	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		response.Error(w, r, logger, errors.Unauthorized("no user claims found in context"))
		return
	}

	ctx := r.Context()

	user, err := h.sessions.Get(ctx, claims.AccountID)
	if err != nil {
		if errors.GetType(err) != errors.ErrorTypeNotFound {
			response.Error(w, r, logger, err)
			return
		}

		logger.Debug("No stored session, re-establishing", "account_id", claims.AccountID)
		user, err = h.sessions.Establish(ctx, session.Identity{ID: claims.AccountID, Email: claims.Email})
		if err != nil {
			response.Error(w, r, logger, err)
			return
		}
	}

	response.Success(w, http.StatusOK, user)
}
