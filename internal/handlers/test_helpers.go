package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
	pkghttp "github.com/menubox/menubox/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims to request context for testing authenticated endpoints
func WithAuthContext(req *http.Request, userID, email, role string) *http.Request {
	claims := &models.TokenClaims{
		Type:   "access",
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	SignupFunc func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	LoginFunc  func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	MeFunc     func(ctx context.Context, uid string) (*models.User, error)
}

func (m *MockAuthService) Signup(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAuthService) Me(ctx context.Context, uid string) (*models.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, uid)
	}
	return nil, models.ErrNotFound
}

// MockVerificationService implements VerificationServiceInterface for testing
type MockVerificationService struct {
	ResendFunc func(ctx context.Context, callerUID, uid string) error
	RedeemFunc func(ctx context.Context, callerUID, uid, inputCode string) error
	StatusFunc func(ctx context.Context, uid string) (bool, error)
}

func (m *MockVerificationService) Resend(ctx context.Context, callerUID, uid string) error {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, callerUID, uid)
	}
	return nil
}

func (m *MockVerificationService) Redeem(ctx context.Context, callerUID, uid, inputCode string) error {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, callerUID, uid, inputCode)
	}
	return nil
}

func (m *MockVerificationService) Status(ctx context.Context, uid string) (bool, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, uid)
	}
	return false, nil
}

// MockBillingService implements BillingServiceInterface for testing
type MockBillingService struct {
	ListRestaurantsFunc func(ctx context.Context, limit, offset int) ([]*models.Restaurant, error)
	GetRestaurantFunc   func(ctx context.Context, id string) (*models.Restaurant, error)
	UpdatePlanFunc      func(ctx context.Context, adminUID, restaurantID string, input services.UpdatePlanInput) (*models.Restaurant, error)
}

func (m *MockBillingService) ListRestaurants(ctx context.Context, limit, offset int) ([]*models.Restaurant, error) {
	if m.ListRestaurantsFunc != nil {
		return m.ListRestaurantsFunc(ctx, limit, offset)
	}
	return []*models.Restaurant{}, nil
}

func (m *MockBillingService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if m.GetRestaurantFunc != nil {
		return m.GetRestaurantFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockBillingService) UpdatePlan(ctx context.Context, adminUID, restaurantID string, input services.UpdatePlanInput) (*models.Restaurant, error) {
	if m.UpdatePlanFunc != nil {
		return m.UpdatePlanFunc(ctx, adminUID, restaurantID, input)
	}
	return nil, models.ErrInternalServer
}
