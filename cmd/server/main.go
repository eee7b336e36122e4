package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"santaswishlist/internal/config"
	"santaswishlist/internal/database"
	"santaswishlist/internal/handlers"
	"santaswishlist/internal/profilestore"
	"santaswishlist/internal/realtime"
	"santaswishlist/internal/repository"
	"santaswishlist/internal/security"
	"santaswishlist/internal/service"
	"santaswishlist/internal/statistics"
)

const (
	authRateLimit          = 10
	authRateWindow         = time.Minute
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection established", zap.String("type", db.Dialect.Name()))

	if err := db.RunMigrations(cfg.MigrationsPath, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	wishRepo := repository.NewWishRepository(db)
	kvRepo := repository.NewKVRepository(db)

	stores := profilestore.NewFactory(func(userID int64) profilestore.Backend {
		return kvRepo.ForUser(userID)
	}, logger)

	hub := realtime.NewHub(cfg.AllowedOrigins, logger)

	emailService, err := service.NewEmailService(ctx, cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.FromName, cfg.Email.AppBaseURL, logger)
	if err != nil {
		return err
	}

	// Services
	profileService := service.NewProfileService(stores, hub, statistics.DefaultJitter, logger)
	achievementService := service.NewAchievementService(stores, hub, emailService, logger)
	wishService := service.NewWishService(wishRepo, profileService, achievementService, hub, logger)
	dashboardService := service.NewDashboardService(wishService, profileService, achievementService)
	authService := service.NewAuthService(userRepo, profileService, emailService, security.NewTokenIssuer(cfg.JWTSecret), cfg.SessionDuration, logger)

	// Handlers
	limiter := security.NewRateLimiter(authRateLimit, authRateWindow)
	defer limiter.Close()
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)

	router := handlers.NewRouter(handlers.Handlers{
		Auth: handlers.NewAuthHandler(authService, csrf, handlers.AuthHandlerConfig{
			OAuthProviders:       handlers.DefaultOAuthProviders(cfg.OAuth),
			CookieSecret:         cfg.CookieSecret,
			OAuthRedirectBaseURL: cfg.OAuth.RedirectBaseURL,
			AppBaseURL:           cfg.Email.AppBaseURL,
		}, logger),
		Wishes:     handlers.NewWishHandler(wishService, logger),
		Profiles:   handlers.NewProfileHandler(profileService, wishService, achievementService, dashboardService, logger),
		Public:     handlers.NewPublicHandler(db, hub, logger),
		Middleware: handlers.NewMiddleware(authService, csrf, limiter, logger),
	}, logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", security.CSRFHeader},
		AllowCredentials: true,
		Debug:            false,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		cleanupExpiredSessions(gctx, authService, logger)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// cleanupExpiredSessions periodically removes expired sessions until ctx is done
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authService.CleanupExpiredSessions()
			if err != nil {
				logger.Error("failed to clean up expired sessions", zap.Error(err))
				continue
			}
			logger.Info("expired sessions cleaned up", zap.Int64("removed", removed))
		}
	}
}
