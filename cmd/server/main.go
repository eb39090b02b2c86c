package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"padel-server/internal/account"
	"padel-server/internal/avatar"
	"padel-server/internal/middleware"
	"padel-server/internal/profile"
	"padel-server/internal/server"
	"padel-server/internal/session"
	"padel-server/internal/shared/config"
	"padel-server/internal/shared/database"
	"padel-server/internal/shared/logger"
	"padel-server/internal/shared/redis"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	logger.Init()
	log := slog.With("component", "main")
	cfg := config.GlobalConfig

	log.Info("Starting padel server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	db, err := database.Connect()
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.Connect()
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx := context.Background()

	storage, err := avatar.NewS3Storage(ctx, cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo, slog.Default())

	profileRepo := profile.NewRepository(db)
	profileService := profile.NewService(profileRepo, slog.Default())

	var sessionStore session.Store
	if redisClient != nil {
		sessionStore = session.NewRedisStore(redisClient, cfg.Auth.TokenExpiration)
	} else {
		sessionStore = session.NewMemoryStore()
	}
	sessionManager := session.NewManager(profileService, sessionStore, nil, slog.Default())

	pipeline := avatar.NewPipeline(storage, cfg.Storage.AvatarBucket, slog.Default())
	avatarStrategy := avatar.NewDualVariantStrategy(pipeline)

	oauthConfig := account.NewOAuthConfig()

	routes := server.NewRoutes(db, accountService, profileService, sessionManager, avatarStrategy, oauthConfig, slog.Default())
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		TrustProxy:        cfg.Server.Environment == "production",
	})
	corsMiddleware := middleware.NewCORS()

	handler := rateLimiter.Middleware(corsMiddleware.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-shutdownCtx.Done()
	log.Info("Shutting down server")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(timeoutCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped")
}
