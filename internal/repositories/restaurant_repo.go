package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menubox/menubox/internal/database"
	"github.com/menubox/menubox/internal/models"
)

// RestaurantRepository handles restaurant (tenant) data access
type RestaurantRepository struct {
	db *database.DB
}

// NewRestaurantRepository creates a new RestaurantRepository
func NewRestaurantRepository(db *database.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func scanRestaurantRow(row rowScanner) (*models.Restaurant, error) {
	var rst models.Restaurant
	var brandingJSON []byte

	err := row.Scan(
		&rst.ID, &rst.Name, &rst.Slug, &rst.OwnerUID,
		&rst.Phone, &rst.WhatsappPhoneE164, &rst.Address,
		&rst.IsActive, &rst.PlanStatus, &rst.TrialEndsAt,
		&rst.SubscriptionEndsAt, &rst.BillingNote,
		&brandingJSON, &rst.CreatedAt, &rst.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if len(brandingJSON) > 0 {
		if err := json.Unmarshal(brandingJSON, &rst.Branding); err != nil {
			return nil, fmt.Errorf("failed to decode branding: %w", err)
		}
	}

	return &rst, nil
}

const restaurantColumns = `id, name, slug, owner_uid, phone, whatsapp_phone_e164, address,
	is_active, plan_status, trial_ends_at, subscription_ends_at, billing_note,
	branding, created_at, updated_at`

// Create inserts a new restaurant
func (r *RestaurantRepository) Create(ctx context.Context, rst *models.Restaurant) (*models.Restaurant, error) {
	if rst.ID == "" {
		rst.ID = uuid.New().String()
	}

	brandingJSON, err := json.Marshal(rst.Branding)
	if err != nil {
		return nil, fmt.Errorf("failed to encode branding: %w", err)
	}

	query := `
		INSERT INTO restaurants
			(id, name, slug, owner_uid, phone, whatsapp_phone_e164, address,
			 is_active, plan_status, trial_ends_at, branding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + restaurantColumns

	created, err := scanRestaurantRow(r.db.Pool.QueryRow(ctx, query,
		rst.ID, rst.Name, rst.Slug, rst.OwnerUID,
		rst.Phone, rst.WhatsappPhoneE164, rst.Address,
		rst.IsActive, rst.PlanStatus, rst.TrialEndsAt, brandingJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}

	return created, nil
}

// GetByID retrieves a restaurant by id
func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	return scanRestaurantRow(r.db.Pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves a restaurant by its public slug
func (r *RestaurantRepository) GetBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE slug = $1`
	return scanRestaurantRow(r.db.Pool.QueryRow(ctx, query, slug))
}

// GetByOwner retrieves the restaurant owned by the given user
func (r *RestaurantRepository) GetByOwner(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE owner_uid = $1`
	return scanRestaurantRow(r.db.Pool.QueryRow(ctx, query, ownerUID))
}

// List returns all restaurants, newest first (super-admin view)
func (r *RestaurantRepository) List(ctx context.Context, limit, offset int) ([]*models.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	restaurants := make([]*models.Restaurant, 0)
	for rows.Next() {
		rst, err := scanRestaurantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, rst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	return restaurants, nil
}

// UpdateBranding replaces the branding document for a restaurant
func (r *RestaurantRepository) UpdateBranding(ctx context.Context, id string, branding *models.Branding) error {
	brandingJSON, err := json.Marshal(branding)
	if err != nil {
		return fmt.Errorf("failed to encode branding: %w", err)
	}

	query := `UPDATE restaurants SET branding = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id, brandingJSON)
	if err != nil {
		return fmt.Errorf("failed to update branding: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePlan updates billing state for a restaurant (super-admin only)
func (r *RestaurantRepository) UpdatePlan(ctx context.Context, id, planStatus string, subscriptionEndsAt *time.Time, billingNote string, isActive bool) error {
	query := `
		UPDATE restaurants SET
			plan_status = $2,
			subscription_ends_at = $3,
			billing_note = $4,
			is_active = $5,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id, planStatus, subscriptionEndsAt, billingNote, isActive)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ExpireLapsedPlans marks trials and subscriptions whose end date has passed
// as past_due. Returns the number of rows transitioned.
func (r *RestaurantRepository) ExpireLapsedPlans(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE restaurants SET plan_status = $2, updated_at = NOW()
		WHERE (plan_status = $3 AND trial_ends_at < $1)
		   OR (plan_status = $4 AND subscription_ends_at IS NOT NULL AND subscription_ends_at < $1)
	`

	result, err := r.db.Pool.Exec(ctx, query, now, models.PlanPastDue, models.PlanTrial, models.PlanActive)
	if err != nil {
		return 0, fmt.Errorf("failed to expire lapsed plans: %w", database.MapPostgresError(err))
	}

	return result.RowsAffected(), nil
}
