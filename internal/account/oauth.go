package account

import (
	"log/slog"

	"padel-server/internal/account/providers"
	"padel-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig holds the configured OAuth providers. Only Google is wired up;
// the padel frontend offers no other social sign-in.
type OAuthConfig struct {
	GoogleProvider   providers.OAuthProvider
	GoogleConfigured bool
}

func NewOAuthConfig() *OAuthConfig {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth", "operation", "setup")

	googleConfigured := cfg.GoogleOAuthConfigured()
	if !googleConfigured {
		logger.Warn("Google OAuth not configured, social sign-in disabled")
	}

	googleOAuth := &oauth2.Config{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
		Scopes:       cfg.OAuth.Google.Scopes,
		Endpoint:     google.Endpoint,
	}

	logger.Debug("OAuth providers initialized", "google_configured", googleConfigured)

	return &OAuthConfig{
		GoogleProvider:   providers.NewGoogleProvider(googleOAuth),
		GoogleConfigured: googleConfigured,
	}
}
