package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/menubox/menubox/internal/models"
	pkgauth "github.com/menubox/menubox/pkg/auth"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

// UserRepository defines the user data access needed by auth
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRestaurantID(ctx context.Context, userID, restaurantID string) error
}

// TokenIssuer mints access tokens for authenticated users
type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}

// CodeIssuer starts the verification flow for a new account
type CodeIssuer interface {
	Issue(ctx context.Context, uid, email string) error
}

// AuthResponse is returned from signup and login
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
	// VerificationEmailSent is false when the account was created but the
	// code email could not be delivered; the client should offer a resend.
	VerificationEmailSent bool `json:"verification_email_sent"`
}

// AuthService handles signup and login for owners and super-admins
type AuthService struct {
	userRepo     UserRepository
	tokenIssuer  TokenIssuer
	verification CodeIssuer
	logger       *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserRepository, tokenIssuer TokenIssuer, verification CodeIssuer, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenIssuer:  tokenIssuer,
		verification: verification,
		logger:       logger,
	}
}

// Signup registers a restaurant owner. The account starts unverified and the
// first verification code is issued in the same flow. A failed email
// dispatch does not fail the signup: the account and record are committed
// and the response carries VerificationEmailSent=false.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	unverified := false
	user, err := s.userRepo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleOwner,
		IsVerified:   &unverified,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	emailSent := true
	if err := s.verification.Issue(ctx, user.ID, user.Email); err != nil {
		if !errors.Is(err, models.ErrEmailDispatch) {
			s.logger.Error("failed to issue verification code",
				slog.String("uid", user.ID),
				slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		emailSent = false
	}

	token, err := s.tokenIssuer.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("owner signed up",
		slog.String("uid", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.Bool("verification_email_sent", emailSent))

	return &AuthResponse{
		AccessToken:           token,
		User:                  user,
		VerificationEmailSent: emailSent,
	}, nil
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, models.ErrUnauthorized
	}

	token, err := s.tokenIssuer.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken:           token,
		User:                  user,
		VerificationEmailSent: true,
	}, nil
}

// Me returns the caller's profile record
func (s *AuthService) Me(ctx context.Context, uid string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, uid)
}
