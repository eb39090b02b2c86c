package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"padel-server/internal/account"
	"padel-server/internal/account/providers"
	"padel-server/internal/profile"
	"padel-server/internal/session"
	"padel-server/internal/shared/config"
	"padel-server/internal/shared/cookies"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

// OAuthHandler runs the social sign-in flow for a single provider. The
// callback funnels into the same session bootstrap as password sign-in.
type OAuthHandler struct {
	provider     providers.OAuthProvider
	accounts     *account.Service
	profiles     *profile.Service
	sessions     *session.Manager
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, accounts *account.Service, profiles *profile.Service, sessions *session.Manager, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		accounts:     accounts,
		profiles:     profiles,
		sessions:     sessions,
		isConfigured: isConfigured,
	}
}

func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not configured", name)))
		return
	}

	state, err := account.GenerateOAuthState(name)
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	http.Redirect(w, r, h.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied", "oauth_error", errorParam)
		redirectWithError(w, r, "oauth_denied", "authorization was denied")
		return
	}

	if err := account.ValidateOAuthState(state, name); err != nil {
		logger.Warn("OAuth state validation failed", "error", err)
		redirectWithError(w, r, "oauth_error", "invalid sign-in state")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code")
		redirectWithError(w, r, "oauth_error", "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err)
		redirectWithError(w, r, "oauth_error", "sign-in failed")
		return
	}

	userInfo, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err)
		redirectWithError(w, r, "oauth_error", "sign-in failed")
		return
	}

	if userInfo.Email == "" || !userInfo.EmailVerified {
		logger.Error("OAuth identity missing verified email")
		redirectWithError(w, r, "oauth_error", "a verified email is required")
		return
	}

	userLogger := logger.With("email", userInfo.Email)

	acct, created, err := h.accounts.EnsureAccount(ctx, userInfo.Email)
	if err != nil {
		userLogger.Error("Failed to ensure account for OAuth identity", "error", err)
		redirectWithError(w, r, "database_error", "sign-in failed")
		return
	}

	if created {
		username := usernameFromEmail(userInfo.Email)
		fullName := userInfo.Name
		if fullName == "" {
			fullName = username
		}
		if _, err := h.profiles.CreateForAccount(ctx, acct.ID, username, fullName); err != nil {
			userLogger.Error("Failed to create profile for OAuth identity", "error", err)
			redirectWithError(w, r, "database_error", "sign-in failed")
			return
		}
	}

	user, err := h.sessions.Establish(ctx, session.Identity{ID: acct.ID, Email: acct.Email})
	if err != nil {
		cookies.ClearAuthCookie(w)
		if terr := h.sessions.Teardown(ctx, acct.ID); terr != nil {
			userLogger.Warn("Failed to tear down session after bootstrap failure", "error", terr)
		}
		userLogger.Error("Session bootstrap failed after OAuth", "error", err)
		redirectWithError(w, r, "profile_error", "could not load your profile")
		return
	}

	jwtToken, err := account.GenerateJWT(acct.ID, acct.Email, user.Role.String())
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err)
		redirectWithError(w, r, "auth_error", "sign-in failed")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth sign-in successful", "account_id", acct.ID, "role", user.Role)

	cfg := config.GlobalConfig
	http.Redirect(w, r, cfg.Frontend.URL+user.RedirectRoute(), http.StatusTemporaryRedirect)
}

// usernameFromEmail derives a valid username from the email local part:
// lowercased, stripped of characters usernames cannot contain, and prefixed
// when it would not start with a letter.
func usernameFromEmail(email string) string {
	local := email
	if idx := strings.Index(email, "@"); idx > 0 {
		local = email[:idx]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}

	username := b.String()
	if username == "" || username[0] < 'a' || username[0] > 'z' {
		username = "player" + username
	}
	if len(username) < 3 {
		username += "player"
	}
	if len(username) > 20 {
		username = username[:20]
	}
	return username
}

// redirectWithError sends the browser back to the frontend error page.
func redirectWithError(w http.ResponseWriter, r *http.Request, errorType, message string) {
	cfg := config.GlobalConfig
	errorURL := fmt.Sprintf("%s/auth/error?error=%s&message=%s",
		cfg.Frontend.URL, errorType, message)

	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
