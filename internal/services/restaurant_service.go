package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/menubox/menubox/internal/models"
)

// TrialDuration is how long a new restaurant's trial plan lasts
const TrialDuration = 14 * 24 * time.Hour

// RestaurantRepository defines the restaurant data access needed by services
type RestaurantRepository interface {
	Create(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error)
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	GetByOwner(ctx context.Context, ownerUID string) (*models.Restaurant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Restaurant, error)
	UpdateBranding(ctx context.Context, id string, branding *models.Branding) error
	UpdatePlan(ctx context.Context, id, planStatus string, subscriptionEndsAt *time.Time, billingNote string, isActive bool) error
}

// CreateRestaurantInput is the owner-supplied restaurant setup
type CreateRestaurantInput struct {
	Name              string
	Slug              string
	Phone             string
	WhatsappPhoneE164 string
	Address           string
}

// RestaurantService handles tenant lifecycle and branding
type RestaurantService struct {
	restaurantRepo RestaurantRepository
	userRepo       UserRepository
	logger         *slog.Logger
	publicBaseURL  string
}

// NewRestaurantService creates a new RestaurantService
func NewRestaurantService(restaurantRepo RestaurantRepository, userRepo UserRepository, logger *slog.Logger, publicBaseURL string) *RestaurantService {
	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		logger:         logger,
		publicBaseURL:  publicBaseURL,
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeSlug lowercases and strips a proposed slug down to [a-z0-9-]
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugPattern.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// Create sets up the owner's restaurant with a fresh trial. Each owner may
// own exactly one restaurant.
func (s *RestaurantService) Create(ctx context.Context, ownerUID string, input CreateRestaurantInput) (*models.Restaurant, error) {
	if _, err := s.restaurantRepo.GetByOwner(ctx, ownerUID); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	slug := NormalizeSlug(input.Slug)
	if slug == "" {
		slug = NormalizeSlug(input.Name)
	}
	if slug == "" {
		return nil, models.ErrBadRequest
	}

	rst := &models.Restaurant{
		Name:              strings.TrimSpace(input.Name),
		Slug:              slug,
		OwnerUID:          ownerUID,
		Phone:             input.Phone,
		WhatsappPhoneE164: input.WhatsappPhoneE164,
		Address:           input.Address,
		IsActive:          true,
		PlanStatus:        models.PlanTrial,
		TrialEndsAt:       time.Now().Add(TrialDuration),
		Branding: models.Branding{
			Theme: models.Theme{
				Mode:       "light",
				Primary:    "#059669",
				Secondary:  "#0d9488",
				Background: "#fafaf9",
			},
		},
	}

	created, err := s.restaurantRepo.Create(ctx, rst)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// slug already taken
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create restaurant", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := s.userRepo.SetRestaurantID(ctx, ownerUID, created.ID); err != nil {
		s.logger.Error("failed to link restaurant to owner",
			slog.String("restaurant_id", created.ID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("restaurant created",
		slog.String("restaurant_id", created.ID),
		slog.String("slug", created.Slug))

	return created, nil
}

// GetMine returns the caller's restaurant
func (s *RestaurantService) GetMine(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
	return s.restaurantRepo.GetByOwner(ctx, ownerUID)
}

// UpdateBranding replaces the branding document of the caller's restaurant
func (s *RestaurantService) UpdateBranding(ctx context.Context, ownerUID string, branding *models.Branding) (*models.Restaurant, error) {
	rst, err := s.restaurantRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		return nil, err
	}

	if branding.Theme.Mode != "light" && branding.Theme.Mode != "dark" {
		return nil, models.ErrBadRequest
	}

	if err := s.restaurantRepo.UpdateBranding(ctx, rst.ID, branding); err != nil {
		return nil, err
	}

	return s.restaurantRepo.GetByID(ctx, rst.ID)
}

// MenuURL is the public address of a restaurant's menu page
func (s *RestaurantService) MenuURL(rst *models.Restaurant) string {
	return fmt.Sprintf("%s/m/%s", strings.TrimRight(s.publicBaseURL, "/"), rst.Slug)
}

// QRCodePNG renders the restaurant's public menu URL as a PNG QR image
func (s *RestaurantService) QRCodePNG(ctx context.Context, ownerUID string, size int) ([]byte, error) {
	rst, err := s.restaurantRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		return nil, err
	}

	if size <= 0 || size > 2048 {
		size = 512
	}

	png, err := qrcode.Encode(s.MenuURL(rst), qrcode.Medium, size)
	if err != nil {
		s.logger.Error("failed to encode QR code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return png, nil
}
