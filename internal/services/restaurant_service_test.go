package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/menubox/menubox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beirut Bites", "beirut-bites"},
		{"  Café L'Étoile!  ", "caf-ltoile"},
		{"already-fine", "already-fine"},
		{"--trim--", "trim"},
		{"УТФ only", "only"},
		{"УТФ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSlug(tt.in), "input %q", tt.in)
	}
}

func TestRestaurantService_Create_Success(t *testing.T) {
	var linked string
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error) {
			rst.ID = "rst-1"
			return rst, nil
		},
	}
	userRepo := &MockUserRepository{
		SetRestaurantIDFunc: func(ctx context.Context, userID, restaurantID string) error {
			linked = restaurantID
			return nil
		},
	}

	svc := NewRestaurantService(restaurantRepo, userRepo, slog.Default(), "https://menu.example.com")

	rst, err := svc.Create(context.Background(), "owner-1", CreateRestaurantInput{
		Name: "Beirut Bites",
	})
	require.NoError(t, err)

	assert.Equal(t, "beirut-bites", rst.Slug, "slug falls back to the name")
	assert.Equal(t, models.PlanTrial, rst.PlanStatus)
	assert.True(t, rst.IsActive)
	assert.True(t, rst.TrialEndsAt.After(time.Now().Add(TrialDuration-time.Hour)))
	assert.Equal(t, "light", rst.Branding.Theme.Mode)
	assert.Equal(t, "rst-1", linked, "owner profile points at the new restaurant")
}

func TestRestaurantService_Create_OnePerOwner(t *testing.T) {
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return &models.Restaurant{ID: "rst-1"}, nil
		},
	}

	svc := NewRestaurantService(restaurantRepo, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	_, err := svc.Create(context.Background(), "owner-1", CreateRestaurantInput{Name: "Second Place"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRestaurantService_Create_UnusableSlug(t *testing.T) {
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := NewRestaurantService(restaurantRepo, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	_, err := svc.Create(context.Background(), "owner-1", CreateRestaurantInput{Name: "мензис"})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRestaurantService_Create_SlugTaken(t *testing.T) {
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return nil, models.ErrNotFound
		},
		CreateFunc: func(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error) {
			return nil, models.ErrConflict
		},
	}

	svc := NewRestaurantService(restaurantRepo, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	_, err := svc.Create(context.Background(), "owner-1", CreateRestaurantInput{Name: "Beirut Bites"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRestaurantService_UpdateBranding_RejectsUnknownMode(t *testing.T) {
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return &models.Restaurant{ID: "rst-1"}, nil
		},
	}

	svc := NewRestaurantService(restaurantRepo, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	_, err := svc.UpdateBranding(context.Background(), "owner-1", &models.Branding{
		Theme: models.Theme{Mode: "neon"},
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRestaurantService_MenuURL(t *testing.T) {
	svc := NewRestaurantService(&MockRestaurantRepository{}, &MockUserRepository{}, slog.Default(), "https://menu.example.com/")

	url := svc.MenuURL(&models.Restaurant{Slug: "beirut-bites"})
	assert.Equal(t, "https://menu.example.com/m/beirut-bites", url)
}

func TestRestaurantService_QRCodePNG(t *testing.T) {
	restaurantRepo := &MockRestaurantRepository{
		GetByOwnerFunc: func(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
			return &models.Restaurant{ID: "rst-1", Slug: "beirut-bites"}, nil
		},
	}

	svc := NewRestaurantService(restaurantRepo, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	png, err := svc.QRCodePNG(context.Background(), "owner-1", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "output is a PNG")

	// Oversized requests fall back to the default edge length.
	png2, err := svc.QRCodePNG(context.Background(), "owner-1", 100000)
	require.NoError(t, err)
	assert.NotEmpty(t, png2)
}

func TestRestaurantService_QRCodePNG_NoRestaurant(t *testing.T) {
	svc := NewRestaurantService(&MockRestaurantRepository{}, &MockUserRepository{}, slog.Default(), "https://menu.example.com")

	_, err := svc.QRCodePNG(context.Background(), "owner-1", 512)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
