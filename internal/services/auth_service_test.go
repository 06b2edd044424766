package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/menubox/menubox/internal/models"
	pkgauth "github.com/menubox/menubox/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(userRepo *MockUserRepository, issuer *MockCodeIssuer) *AuthService {
	return NewAuthService(userRepo, &MockTokenIssuer{}, issuer, slog.Default())
}

func TestAuthService_Signup_Success(t *testing.T) {
	var created *models.User
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = uuid.New().String()
			created = user
			return user, nil
		},
	}

	issued := false
	issuer := &MockCodeIssuer{
		IssueFunc: func(ctx context.Context, uid, email string) error {
			issued = true
			return nil
		},
	}

	svc := newAuthService(userRepo, issuer)

	resp, err := svc.Signup(context.Background(), "Owner@Example.com ", "Passw0rd123")
	require.NoError(t, err)

	assert.Equal(t, "test-token", resp.AccessToken)
	assert.True(t, resp.VerificationEmailSent)
	assert.True(t, issued)

	require.NotNil(t, created)
	assert.Equal(t, "owner@example.com", created.Email, "email is normalized")
	assert.Equal(t, models.RoleOwner, created.Role)
	require.NotNil(t, created.IsVerified)
	assert.False(t, *created.IsVerified, "new owners start unverified")
	assert.NotEqual(t, "Passw0rd123", created.PasswordHash)
	assert.NoError(t, pkgauth.ComparePassword(created.PasswordHash, "Passw0rd123"))
}

func TestAuthService_Signup_WeakPassword(t *testing.T) {
	svc := newAuthService(&MockUserRepository{}, &MockCodeIssuer{})

	_, err := svc.Signup(context.Background(), "owner@example.com", "short")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	svc := newAuthService(userRepo, &MockCodeIssuer{})

	_, err := svc.Signup(context.Background(), "owner@example.com", "Passw0rd123")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Signup_EmailDispatchFailureDoesNotFailSignup(t *testing.T) {
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user-1"
			return user, nil
		},
	}
	issuer := &MockCodeIssuer{
		IssueFunc: func(ctx context.Context, uid, email string) error {
			return fmt.Errorf("%w: relay returned 502", models.ErrEmailDispatch)
		},
	}

	svc := newAuthService(userRepo, issuer)

	resp, err := svc.Signup(context.Background(), "owner@example.com", "Passw0rd123")
	require.NoError(t, err, "account creation survives a dead mail relay")
	assert.False(t, resp.VerificationEmailSent)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_Signup_IssueFailure(t *testing.T) {
	userRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user-1"
			return user, nil
		},
	}
	issuer := &MockCodeIssuer{
		IssueFunc: func(ctx context.Context, uid, email string) error {
			return models.ErrInternalServer
		},
	}

	svc := newAuthService(userRepo, issuer)

	_, err := svc.Signup(context.Background(), "owner@example.com", "Passw0rd123")
	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword("Passw0rd123")
	require.NoError(t, err)

	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "owner@example.com", email)
			return &models.User{ID: "user-1", Email: email, PasswordHash: hash, Role: models.RoleOwner}, nil
		},
	}

	svc := newAuthService(userRepo, &MockCodeIssuer{})

	resp, err := svc.Login(context.Background(), " Owner@example.COM", "Passw0rd123")
	require.NoError(t, err)
	assert.Equal(t, "test-token", resp.AccessToken)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, err := pkgauth.HashPassword("Passw0rd123")
	require.NoError(t, err)

	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "user-1", Email: email, PasswordHash: hash}, nil
		},
	}

	svc := newAuthService(userRepo, &MockCodeIssuer{})

	_, err = svc.Login(context.Background(), "owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := newAuthService(userRepo, &MockCodeIssuer{})

	// Unknown email and wrong password are indistinguishable to callers.
	_, err := svc.Login(context.Background(), "nobody@example.com", "Passw0rd123")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Me(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "owner@example.com"}, nil
		},
	}

	svc := newAuthService(userRepo, &MockCodeIssuer{})

	user, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}
