package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/menubox/menubox/internal/handlers"
	"github.com/menubox/menubox/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVerificationResend_Success(t *testing.T) {
	var gotCaller, gotUID string
	mockService := &handlers.MockVerificationService{
		ResendFunc: func(ctx context.Context, callerUID, uid string) error {
			gotCaller, gotUID = callerUID, uid
			return nil
		},
	}

	handler := handlers.NewVerificationHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/verification/resend", handlers.ResendRequest{UID: "user-1"})
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "sent", resp["status"])
	assert.Equal(t, "user-1", gotCaller)
	assert.Equal(t, "user-1", gotUID)
}

func TestVerificationResend_NoSession(t *testing.T) {
	handler := handlers.NewVerificationHandler(&handlers.MockVerificationService{})
	req := handlers.NewTestRequest(t, "POST", "/verification/resend", handlers.ResendRequest{UID: "user-1"})

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestVerificationResend_TooSoon(t *testing.T) {
	mockService := &handlers.MockVerificationService{
		ResendFunc: func(ctx context.Context, callerUID, uid string) error {
			return &models.TooSoonError{RetryAfter: 42 * time.Second}
		},
	}

	handler := handlers.NewVerificationHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/verification/resend", handlers.ResendRequest{UID: "user-1"})
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	handlers.AssertErrorResponse(t, w, 429, "too_soon")
	assert.Equal(t, "43", w.Header().Get("Retry-After"))
}

func TestVerificationResend_QuotaExceeded(t *testing.T) {
	mockService := &handlers.MockVerificationService{
		ResendFunc: func(ctx context.Context, callerUID, uid string) error {
			return models.ErrTooManyRequests
		},
	}

	handler := handlers.NewVerificationHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/verification/resend", handlers.ResendRequest{UID: "user-1"})
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	handlers.AssertErrorResponse(t, w, 429, "too_many_requests")
}

func TestVerificationResend_StaleSession(t *testing.T) {
	mockService := &handlers.MockVerificationService{
		ResendFunc: func(ctx context.Context, callerUID, uid string) error {
			return models.ErrNotSignedIn
		},
	}

	handler := handlers.NewVerificationHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/verification/resend", handlers.ResendRequest{UID: "user-other"})
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	handlers.AssertErrorResponse(t, w, 401, "not_signed_in")
}

func TestVerificationRedeem_Success(t *testing.T) {
	var gotCode string
	mockService := &handlers.MockVerificationService{
		RedeemFunc: func(ctx context.Context, callerUID, uid, inputCode string) error {
			gotCode = inputCode
			return nil
		},
	}

	handler := handlers.NewVerificationHandler(mockService)
	req := handlers.NewTestRequest(t, "POST", "/verification/redeem", handlers.RedeemRequest{UID: "user-1", Code: "123456"})
	req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

	w := httptest.NewRecorder()
	handler.Redeem(w, req)

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "verified", resp["status"])
	assert.Equal(t, "123456", gotCode)
}

func TestVerificationRedeem_MalformedCode(t *testing.T) {
	handler := handlers.NewVerificationHandler(&handlers.MockVerificationService{})

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		req := handlers.NewTestRequest(t, "POST", "/verification/redeem", handlers.RedeemRequest{UID: "user-1", Code: code})
		req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

		w := httptest.NewRecorder()
		handler.Redeem(w, req)

		assert.Equal(t, 400, w.Code, "code %q should be rejected before the service", code)
	}
}

func TestVerificationRedeem_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"wrong code", models.ErrInvalidCode, 400, "invalid_code"},
		{"expired", models.ErrCodeExpired, 410, "code_expired"},
		{"already verified", models.ErrAlreadyVerified, 409, "already_verified"},
		{"no record", models.ErrRecordNotFound, 404, "record_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &handlers.MockVerificationService{
				RedeemFunc: func(ctx context.Context, callerUID, uid, inputCode string) error {
					return tt.serviceErr
				},
			}

			handler := handlers.NewVerificationHandler(mockService)
			req := handlers.NewTestRequest(t, "POST", "/verification/redeem", handlers.RedeemRequest{UID: "user-1", Code: "123456"})
			req = handlers.WithAuthContext(req, "user-1", "owner@example.com", models.RoleOwner)

			w := httptest.NewRecorder()
			handler.Redeem(w, req)

			handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestVerificationStatus(t *testing.T) {
	mockService := &handlers.MockVerificationService{
		StatusFunc: func(ctx context.Context, uid string) (bool, error) {
			return uid == "verified-user", nil
		},
	}

	handler := handlers.NewVerificationHandler(mockService)

	req := handlers.NewTestRequest(t, "GET", "/verification/status", nil)
	req = handlers.WithAuthContext(req, "verified-user", "owner@example.com", models.RoleOwner)
	w := httptest.NewRecorder()
	handler.Status(w, req)

	var resp handlers.StatusResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.Verified)

	req = handlers.NewTestRequest(t, "GET", "/verification/status", nil)
	req = handlers.WithAuthContext(req, "fresh-user", "owner@example.com", models.RoleOwner)
	w = httptest.NewRecorder()
	handler.Status(w, req)

	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.False(t, resp.Verified)
}
