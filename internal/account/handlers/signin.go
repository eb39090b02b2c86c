package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	"padel-server/internal/session"
	"padel-server/internal/shared/cookies"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInHandler struct {
	accounts *account.Service
	sessions *session.Manager
}

func NewSignInHandler(accounts *account.Service, sessions *session.Manager) *SignInHandler {
	return &SignInHandler{
		accounts: accounts,
		sessions: sessions,
	}
}

// ServeHTTP verifies credentials and bootstraps the session. A missing
// profile row after successful authentication forces a logout rather than a
// half-initialized session.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "signin")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.Validation("invalid JSON payload"))
		return
	}

	ctx := r.Context()

	acct, err := h.accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	user, err := h.sessions.Establish(ctx, session.Identity{ID: acct.ID, Email: acct.Email})
	if err != nil {
		cookies.ClearAuthCookie(w)
		if terr := h.sessions.Teardown(ctx, acct.ID); terr != nil {
			logger.Warn("Failed to tear down session after bootstrap failure", "error", terr)
		}
		response.ErrorWithMessage(w, r, logger, err, "could not load your profile, please contact support")
		return
	}

	token, err := account.GenerateJWT(acct.ID, acct.Email, user.Role.String())
	if err != nil {
		cookies.ClearAuthCookie(w)
		if terr := h.sessions.Teardown(ctx, acct.ID); terr != nil {
			logger.Warn("Failed to tear down session after token failure", "error", terr)
		}
		response.Error(w, r, logger, errors.WrapInternal("failed to generate token", err))
		return
	}

	cookies.SetAuthCookie(w, token)

	logger.Info("Sign in successful", "account_id", acct.ID, "role", user.Role)

	response.Success(w, http.StatusOK, SessionResponse{
		User:       user,
		RedirectTo: user.RedirectRoute(),
	})
}
