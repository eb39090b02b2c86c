package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	"padel-server/internal/profile"
	"padel-server/internal/session"
	"padel-server/internal/shared/cookies"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

type SessionResponse struct {
	User       *session.User `json:"user"`
	RedirectTo string        `json:"redirect_to,omitempty"`
}

type SignUpHandler struct {
	accounts *account.Service
	profiles *profile.Service
	sessions *session.Manager
}

func NewSignUpHandler(accounts *account.Service, profiles *profile.Service, sessions *session.Manager) *SignUpHandler {
	return &SignUpHandler{
		accounts: accounts,
		profiles: profiles,
		sessions: sessions,
	}
}

// ServeHTTP creates the account and its profile row, then signs the new user
// in. When the email is already registered the conflict is reported against
// the email field and no sign-in is attempted.
func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "signup")

	if r.Method != http.MethodPost {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, errors.Validation("invalid JSON payload"))
		return
	}

	ctx := r.Context()

	acct, err := h.accounts.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if _, err := h.profiles.CreateForAccount(ctx, acct.ID, req.Username, req.FullName); err != nil {
		logger.Warn("Profile creation failed after sign up", "account_id", acct.ID, "error", err)
		response.Error(w, r, logger, err)
		return
	}

	// Automatic sign-in after a successful sign-up
	user, err := h.sessions.Establish(ctx, session.Identity{ID: acct.ID, Email: acct.Email})
	if err != nil {
		h.teardown(ctx, w, acct.ID)
		response.ErrorWithMessage(w, r, logger, err, "account created but sign-in failed, please sign in")
		return
	}

	token, err := account.GenerateJWT(acct.ID, acct.Email, user.Role.String())
	if err != nil {
		h.teardown(ctx, w, acct.ID)
		response.Error(w, r, logger, errors.WrapInternal("failed to generate token", err))
		return
	}

	cookies.SetAuthCookie(w, token)

	logger.Info("Sign up successful", "account_id", acct.ID, "role", user.Role)

	response.Success(w, http.StatusCreated, SessionResponse{
		User:       user,
		RedirectTo: user.RedirectRoute(),
	})
}

// teardown clears any partially established session state so a failed
// bootstrap never leaves a half-initialized session behind.
func (h *SignUpHandler) teardown(ctx context.Context, w http.ResponseWriter, id string) {
	cookies.ClearAuthCookie(w)
	if err := h.sessions.Teardown(ctx, id); err != nil {
		slog.Warn("Failed to tear down session after bootstrap failure", "account_id", id, "error", err)
	}
}
