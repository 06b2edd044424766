package handlers_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/menubox/menubox/internal/handlers"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
	pkglogger "github.com/menubox/menubox/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newAuthHandler(service *handlers.MockAuthService) *handlers.AuthHandler {
	return handlers.NewAuthHandler(service, pkglogger.NewAuditLogger(slog.Default()), nil)
}

func TestSignup_Success(t *testing.T) {
	mockService := &handlers.MockAuthService{
		SignupFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			unverified := false
			return &services.AuthResponse{
				AccessToken:           "token-abc",
				User:                  &models.User{ID: "user-1", Email: email, Role: models.RoleOwner, IsVerified: &unverified},
				VerificationEmailSent: true,
			}, nil
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/auth/signup", handlers.SignupRequest{
		Email:    "owner@example.com",
		Password: "Passw0rd123",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	var resp services.AuthResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "token-abc", resp.AccessToken)
	assert.True(t, resp.VerificationEmailSent)
}

func TestSignup_EmailDispatchDown(t *testing.T) {
	mockService := &handlers.MockAuthService{
		SignupFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				AccessToken:           "token-abc",
				User:                  &models.User{ID: "user-1", Email: email},
				VerificationEmailSent: false,
			}, nil
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/auth/signup", handlers.SignupRequest{
		Email:    "owner@example.com",
		Password: "Passw0rd123",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	// The signup still succeeds; the flag tells the client to offer a resend.
	var resp services.AuthResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.False(t, resp.VerificationEmailSent)
}

func TestSignup_InvalidEmail(t *testing.T) {
	handler := newAuthHandler(&handlers.MockAuthService{})
	req := handlers.NewTestRequest(t, "POST", "/auth/signup", handlers.SignupRequest{
		Email:    "not-an-email",
		Password: "Passw0rd123",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	mockService := &handlers.MockAuthService{
		SignupFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/auth/signup", handlers.SignupRequest{
		Email:    "owner@example.com",
		Password: "Passw0rd123",
	})

	w := httptest.NewRecorder()
	handler.Signup(w, req)

	assert.Equal(t, 409, w.Code)
}

func TestLogin_Success(t *testing.T) {
	mockService := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				AccessToken: "token-abc",
				User:        &models.User{ID: "user-1", Email: email},
			}, nil
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "owner@example.com",
		Password: "Passw0rd123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp services.AuthResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "token-abc", resp.AccessToken)
}

func TestLogin_BadCredentials(t *testing.T) {
	mockService := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestMe_Success(t *testing.T) {
	mockService := &handlers.MockAuthService{
		MeFunc: func(ctx context.Context, uid string) (*models.User, error) {
			return &models.User{ID: uid, Email: "owner@example.com"}, nil
		},
	}

	handler := newAuthHandler(mockService)
	req := handlers.NewTestRequest(t, "GET", "/auth/me", nil)
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Me(w, req)

	var user models.User
	handlers.AssertJSONResponse(t, w, 200, &user)
	assert.Equal(t, "user-1", user.ID)
}

func TestMe_NoSession(t *testing.T) {
	handler := newAuthHandler(&handlers.MockAuthService{})
	req := handlers.NewTestRequest(t, "GET", "/auth/me", nil)

	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, 401, w.Code)
}
