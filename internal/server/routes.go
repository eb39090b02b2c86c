package server

import (
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	accountHandlers "padel-server/internal/account/handlers"
	"padel-server/internal/avatar"
	avatarHandlers "padel-server/internal/avatar/handlers"
	"padel-server/internal/middleware"
	"padel-server/internal/profile"
	profileHandlers "padel-server/internal/profile/handlers"
	serverHandlers "padel-server/internal/server/handlers"
	"padel-server/internal/session"
	"padel-server/internal/shared/database"
)

type Routes struct {
	db             *database.DB
	accountService *account.Service
	profileService *profile.Service
	sessionManager *session.Manager
	avatarStrategy avatar.StorageStrategy
	oauthConfig    *account.OAuthConfig
	logger         *slog.Logger
}

func NewRoutes(
	db *database.DB,
	accountService *account.Service,
	profileService *profile.Service,
	sessionManager *session.Manager,
	avatarStrategy avatar.StorageStrategy,
	oauthConfig *account.OAuthConfig,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:             db,
		accountService: accountService,
		profileService: profileService,
		sessionManager: sessionManager,
		avatarStrategy: avatarStrategy,
		oauthConfig:    oauthConfig,
		logger:         logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	signUpHandler := accountHandlers.NewSignUpHandler(r.accountService, r.profileService, r.sessionManager)
	signInHandler := accountHandlers.NewSignInHandler(r.accountService, r.sessionManager)
	logoutHandler := accountHandlers.NewLogoutHandler(r.sessionManager)
	meHandler := profileHandlers.NewMeHandler(r.sessionManager)
	updateHandler := profileHandlers.NewUpdateHandler(r.accountService, r.profileService, r.sessionManager)
	uploadHandler := avatarHandlers.NewUploadHandler(r.avatarStrategy, r.profileService, r.sessionManager)

	googleAuthHandler := accountHandlers.NewOAuthHandler(
		r.oauthConfig.GoogleProvider,
		r.accountService,
		r.profileService,
		r.sessionManager,
		r.oauthConfig.GoogleConfigured,
	)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.Handle("/auth/signup", signUpHandler)
	mux.Handle("/auth/signin", signInHandler)
	mux.Handle("/auth/logout", logoutHandler)

	// OAuth endpoints
	mux.HandleFunc("/auth/google", googleAuthHandler.HandleAuth)
	mux.HandleFunc("/auth/google/callback", googleAuthHandler.HandleCallback)

	// Protected endpoints (authenticated users)
	mux.Handle("/api/profile/me", middleware.JWTMiddleware(meHandler))
	mux.Handle("/api/profile", middleware.JWTMiddleware(updateHandler))
	mux.Handle("/api/profile/avatar", middleware.JWTMiddleware(uploadHandler))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "/auth/signup", "/auth/signin", "/auth/logout"},
		"protected_endpoints", []string{"/api/profile/me", "/api/profile", "/api/profile/avatar"},
		"auth_endpoints", []string{"/auth/google", "/auth/google/callback"},
	)

	return mux
}
