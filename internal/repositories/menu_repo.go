package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/menubox/menubox/internal/database"
	"github.com/menubox/menubox/internal/models"
)

// MenuRepository handles category and item data access
type MenuRepository struct {
	db *database.DB
}

// NewMenuRepository creates a new MenuRepository
func NewMenuRepository(db *database.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func scanCategoryRow(row rowScanner) (*models.Category, error) {
	var cat models.Category

	err := row.Scan(
		&cat.ID, &cat.RestaurantID, &cat.NameAr, &cat.NameEn,
		&cat.SortOrder, &cat.CoverImageURL, &cat.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &cat, nil
}

func scanItemRow(row rowScanner) (*models.Item, error) {
	var item models.Item

	err := row.Scan(
		&item.ID, &item.RestaurantID, &item.CategoryID,
		&item.NameAr, &item.NameEn, &item.DescAr, &item.DescEn,
		&item.Price, &item.Currency, &item.ImageURL,
		&item.Available, &item.SortOrder, &item.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &item, nil
}

const categoryColumns = `id, restaurant_id, name_ar, name_en, sort_order, cover_image_url, created_at`
const itemColumns = `id, restaurant_id, category_id, name_ar, name_en, desc_ar, desc_en,
	price, currency, image_url, available, sort_order, created_at`

// CreateCategory inserts a new category
func (r *MenuRepository) CreateCategory(ctx context.Context, cat *models.Category) (*models.Category, error) {
	if cat.ID == "" {
		cat.ID = uuid.New().String()
	}

	query := `
		INSERT INTO categories (id, restaurant_id, name_ar, name_en, sort_order, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns

	created, err := scanCategoryRow(r.db.Pool.QueryRow(ctx, query,
		cat.ID, cat.RestaurantID, cat.NameAr, cat.NameEn, cat.SortOrder, cat.CoverImageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return created, nil
}

// UpdateCategory updates an existing category owned by the given restaurant
func (r *MenuRepository) UpdateCategory(ctx context.Context, restaurantID string, cat *models.Category) error {
	query := `
		UPDATE categories SET name_ar = $3, name_en = $4, sort_order = $5, cover_image_url = $6
		WHERE id = $1 AND restaurant_id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query,
		cat.ID, restaurantID, cat.NameAr, cat.NameEn, cat.SortOrder, cat.CoverImageURL)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category and its items
func (r *MenuRepository) DeleteCategory(ctx context.Context, restaurantID, categoryID string) error {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND restaurant_id = $2`, categoryID, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListCategories returns the categories of a restaurant in display order
func (r *MenuRepository) ListCategories(ctx context.Context, restaurantID string) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE restaurant_id = $1 ORDER BY sort_order, created_at`

	rows, err := r.db.Pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		cat, err := scanCategoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

// CreateItem inserts a new menu item
func (r *MenuRepository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO items
			(id, restaurant_id, category_id, name_ar, name_en, desc_ar, desc_en,
			 price, currency, image_url, available, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + itemColumns

	created, err := scanItemRow(r.db.Pool.QueryRow(ctx, query,
		item.ID, item.RestaurantID, item.CategoryID,
		item.NameAr, item.NameEn, item.DescAr, item.DescEn,
		item.Price, item.Currency, item.ImageURL, item.Available, item.SortOrder))
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return created, nil
}

// UpdateItem updates an existing item owned by the given restaurant
func (r *MenuRepository) UpdateItem(ctx context.Context, restaurantID string, item *models.Item) error {
	query := `
		UPDATE items SET
			category_id = $3, name_ar = $4, name_en = $5, desc_ar = $6, desc_en = $7,
			price = $8, currency = $9, image_url = $10, available = $11, sort_order = $12
		WHERE id = $1 AND restaurant_id = $2
	`

	result, err := r.db.Pool.Exec(ctx, query,
		item.ID, restaurantID, item.CategoryID,
		item.NameAr, item.NameEn, item.DescAr, item.DescEn,
		item.Price, item.Currency, item.ImageURL, item.Available, item.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteItem removes a menu item
func (r *MenuRepository) DeleteItem(ctx context.Context, restaurantID, itemID string) error {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM items WHERE id = $1 AND restaurant_id = $2`, itemID, restaurantID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", database.MapPostgresError(err))
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListItems returns the items of a restaurant in display order. When
// availableOnly is set, unavailable items are filtered out (public menu).
func (r *MenuRepository) ListItems(ctx context.Context, restaurantID string, availableOnly bool) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE restaurant_id = $1`
	if availableOnly {
		query += ` AND available = TRUE`
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := r.db.Pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", database.MapPostgresError(err))
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}
