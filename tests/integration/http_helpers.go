package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/database"
	"github.com/menubox/menubox/internal/handlers"
	"github.com/menubox/menubox/internal/routes"
	"github.com/menubox/menubox/internal/services"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

// SentEmail represents a captured verification email
type SentEmail struct {
	To      string
	Code    string
	AppName string
}

// CapturingEmailGateway records dispatched codes for test assertions
type CapturingEmailGateway struct {
	mu     sync.Mutex
	emails []SentEmail
	// Fail makes every send report a relay failure
	Fail bool
}

// Send records the code instead of delivering it
func (g *CapturingEmailGateway) Send(ctx context.Context, to, code, appName string) error {
	if g.Fail {
		return fmt.Errorf("mail relay returned 502: delivery failed")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.emails = append(g.emails, SentEmail{To: to, Code: code, AppName: appName})
	return nil
}

// LastCode returns the most recently dispatched code, or ""
func (g *CapturingEmailGateway) LastCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.emails) == 0 {
		return ""
	}
	return g.emails[len(g.emails)-1].Code
}

// Count returns the number of dispatched emails
func (g *CapturingEmailGateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.emails)
}

// TestServer bundles the full HTTP stack on top of a TestDB
type TestServer struct {
	Server  *httptest.Server
	Gateway *CapturingEmailGateway
}

// SetupTestServer assembles repositories, services, handlers and routes
// against the given database, with email capture instead of a live relay.
func SetupTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	userRepo, verificationRepo, restaurantRepo, menuRepo := InitializeRepositories(db)

	tokenManager := auth.NewTokenManager("integration-test-secret-key", time.Hour)
	auditLogger := pkglogger.NewAuditLogger(logger)
	gateway := &CapturingEmailGateway{}

	verificationService := services.NewVerificationService(verificationRepo, userRepo, gateway, logger, "Menubox")
	authService := services.NewAuthService(userRepo, tokenManager, verificationService, logger)
	restaurantService := services.NewRestaurantService(restaurantRepo, userRepo, logger, "http://localhost:5173")
	menuService := services.NewMenuService(menuRepo, restaurantRepo, logger)
	billingService := services.NewBillingService(restaurantRepo, logger, auditLogger)

	authHandler := handlers.NewAuthHandler(authService, auditLogger, nil)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	menuHandler := handlers.NewMenuHandler(menuService)
	publicHandler := handlers.NewPublicHandler(menuService)
	adminHandler := handlers.NewAdminHandler(billingService)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	routes.RegisterRoutes(router, authHandler, verificationHandler, restaurantHandler, menuHandler, publicHandler, adminHandler, tokenManager, userRepo)

	return &TestServer{
		Server:  httptest.NewServer(router),
		Gateway: gateway,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// PostJSON sends a JSON POST, optionally with a bearer token
func (ts *TestServer) PostJSON(path, token string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return http.DefaultClient.Do(req)
}

// GetJSON sends a GET, optionally with a bearer token
func (ts *TestServer) GetJSON(path, token string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, ts.Server.URL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return http.DefaultClient.Do(req)
}

// DecodeBody decodes a JSON response body into target and closes it
func DecodeBody(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
