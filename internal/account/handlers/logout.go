package handlers

import (
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	"padel-server/internal/session"
	"padel-server/internal/shared/cookies"
	"padel-server/internal/shared/response"
)

type LogoutHandler struct {
	sessions *session.Manager
}

func NewLogoutHandler(sessions *session.Manager) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

// ServeHTTP clears the auth cookie and removes the stored session. It
// succeeds even without a valid token so a broken client can always reset.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "logout")

	if cookie, err := r.Cookie("auth_token"); err == nil {
		if claims, err := account.ValidateJWT(cookie.Value); err == nil {
			if err := h.sessions.Teardown(r.Context(), claims.AccountID); err != nil {
				logger.Warn("Failed to remove stored session on logout",
					"account_id", claims.AccountID, "error", err)
			}
		}
	}

	cookies.ClearAuthCookie(w)

	logger.Info("Logged out")
	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
