package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/menubox/menubox/internal/models"
	pkglogger "github.com/menubox/menubox/pkg/logger"
)

// UpdatePlanInput is the super-admin billing update for one tenant
type UpdatePlanInput struct {
	PlanStatus         string
	SubscriptionEndsAt *time.Time
	BillingNote        string
	IsActive           bool
}

// BillingService handles cross-tenant subscription state (super-admin only)
type BillingService struct {
	restaurantRepo RestaurantRepository
	logger         *slog.Logger
	audit          *pkglogger.AuditLogger
}

// NewBillingService creates a new BillingService
func NewBillingService(restaurantRepo RestaurantRepository, logger *slog.Logger, audit *pkglogger.AuditLogger) *BillingService {
	return &BillingService{
		restaurantRepo: restaurantRepo,
		logger:         logger,
		audit:          audit,
	}
}

// ListRestaurants returns all tenants for the super-admin dashboard
func (s *BillingService) ListRestaurants(ctx context.Context, limit, offset int) ([]*models.Restaurant, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.restaurantRepo.List(ctx, limit, offset)
}

// GetRestaurant returns one tenant by id
func (s *BillingService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.restaurantRepo.GetByID(ctx, id)
}

// UpdatePlan changes a tenant's billing state and records an audit event
func (s *BillingService) UpdatePlan(ctx context.Context, adminUID, restaurantID string, input UpdatePlanInput) (*models.Restaurant, error) {
	switch input.PlanStatus {
	case models.PlanTrial, models.PlanActive, models.PlanPastDue, models.PlanDisabled:
	default:
		return nil, models.ErrBadRequest
	}

	if err := s.restaurantRepo.UpdatePlan(ctx, restaurantID,
		input.PlanStatus, input.SubscriptionEndsAt, input.BillingNote, input.IsActive); err != nil {
		return nil, err
	}

	s.audit.LogBillingChange(adminUID, restaurantID, input.PlanStatus, true)

	return s.restaurantRepo.GetByID(ctx, restaurantID)
}
