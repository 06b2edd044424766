package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/background"
	"github.com/menubox/menubox/internal/config"
	"github.com/menubox/menubox/internal/database"
	"github.com/menubox/menubox/internal/handlers"
	middlewareCustom "github.com/menubox/menubox/internal/middleware"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/repositories"
	"github.com/menubox/menubox/internal/routes"
	"github.com/menubox/menubox/internal/services"
	pkgauth "github.com/menubox/menubox/pkg/auth"
	pkghttp "github.com/menubox/menubox/pkg/http"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	restaurantRepo := repositories.NewRestaurantRepository(db)
	menuRepo := repositories.NewMenuRepository(db)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Verification email delivery goes through the mail relay service
	emailGateway := services.NewRelayEmailGateway(cfg.Mail.RelayURL, logger)

	// Initialize services
	verificationService := services.NewVerificationService(verificationRepo, userRepo, emailGateway, logger, cfg.Mail.AppName)
	authService := services.NewAuthService(userRepo, tokenManager, verificationService, logger)
	restaurantService := services.NewRestaurantService(restaurantRepo, userRepo, logger, cfg.Server.PublicBaseURL)
	menuService := services.NewMenuService(menuRepo, restaurantRepo, logger)
	billingService := services.NewBillingService(restaurantRepo, logger, auditLogger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: []string{"127.0.0.1/32", "10.0.0.0/8", "172.16.0.0/12"}}
	authHandler := handlers.NewAuthHandler(authService, auditLogger, ipConfig)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	menuHandler := handlers.NewMenuHandler(menuService)
	publicHandler := handlers.NewPublicHandler(menuService)
	adminHandler := handlers.NewAdminHandler(billingService)

	// Bootstrap first super admin if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureSuperAdmin(ctx, userRepo, logger); err != nil {
		logger.Error("failed to ensure super admin", slog.Any("error", err))
	}
	cancel()

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.Server.AllowedOrigins

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, verificationHandler, restaurantHandler, menuHandler, publicHandler, adminHandler, tokenManager, userRepo)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start plan sweeper
	sweeper := background.NewPlanSweeper(restaurantRepo, logger, cfg.Server.PlanSweepInterval)
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()

	go sweeper.Start(sweepCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweepCancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureSuperAdmin creates the first super admin user if ADMIN_EMAIL and
// ADMIN_PASSWORD are set. Super admins are created verified; they never
// go through the email verification flow.
func ensureSuperAdmin(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping super admin creation")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("super admin already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if super admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash super admin password: %w", err)
	}

	verified := true
	admin := &models.User{
		Email:        adminEmail,
		PasswordHash: hashedPassword,
		Role:         models.RoleSuperAdmin,
		IsVerified:   &verified,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	logger.Info("super admin created", slog.String("email", pkglogger.SanitizedEmail(adminEmail)))
	return nil
}
