package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/menubox/menubox/internal/models"
)

// MenuRepository defines the menu data access needed by services
type MenuRepository interface {
	CreateCategory(ctx context.Context, cat *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, restaurantID string, cat *models.Category) error
	DeleteCategory(ctx context.Context, restaurantID, categoryID string) error
	ListCategories(ctx context.Context, restaurantID string) ([]*models.Category, error)
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, restaurantID string, item *models.Item) error
	DeleteItem(ctx context.Context, restaurantID, itemID string) error
	ListItems(ctx context.Context, restaurantID string, availableOnly bool) ([]*models.Item, error)
}

// MenuService handles menu content management and the public menu read model
type MenuService struct {
	menuRepo       MenuRepository
	restaurantRepo RestaurantRepository
	logger         *slog.Logger
}

// NewMenuService creates a new MenuService
func NewMenuService(menuRepo MenuRepository, restaurantRepo RestaurantRepository, logger *slog.Logger) *MenuService {
	return &MenuService{
		menuRepo:       menuRepo,
		restaurantRepo: restaurantRepo,
		logger:         logger,
	}
}

// restaurantOf resolves the caller's restaurant for scoping writes
func (s *MenuService) restaurantOf(ctx context.Context, ownerUID string) (*models.Restaurant, error) {
	rst, err := s.restaurantRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrForbidden
		}
		return nil, err
	}
	return rst, nil
}

// CreateCategory adds a category to the caller's menu
func (s *MenuService) CreateCategory(ctx context.Context, ownerUID string, cat *models.Category) (*models.Category, error) {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	cat.RestaurantID = rst.ID
	return s.menuRepo.CreateCategory(ctx, cat)
}

// UpdateCategory updates a category on the caller's menu
func (s *MenuService) UpdateCategory(ctx context.Context, ownerUID string, cat *models.Category) error {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return err
	}
	return s.menuRepo.UpdateCategory(ctx, rst.ID, cat)
}

// DeleteCategory removes a category from the caller's menu
func (s *MenuService) DeleteCategory(ctx context.Context, ownerUID, categoryID string) error {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return err
	}
	return s.menuRepo.DeleteCategory(ctx, rst.ID, categoryID)
}

// ListCategories lists the caller's categories
func (s *MenuService) ListCategories(ctx context.Context, ownerUID string) ([]*models.Category, error) {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	return s.menuRepo.ListCategories(ctx, rst.ID)
}

// CreateItem adds an item to the caller's menu
func (s *MenuService) CreateItem(ctx context.Context, ownerUID string, item *models.Item) (*models.Item, error) {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	if item.Currency != models.CurrencyUSD && item.Currency != models.CurrencyLBP {
		return nil, models.ErrBadRequest
	}
	item.RestaurantID = rst.ID
	return s.menuRepo.CreateItem(ctx, item)
}

// UpdateItem updates an item on the caller's menu
func (s *MenuService) UpdateItem(ctx context.Context, ownerUID string, item *models.Item) error {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return err
	}
	if item.Currency != models.CurrencyUSD && item.Currency != models.CurrencyLBP {
		return models.ErrBadRequest
	}
	return s.menuRepo.UpdateItem(ctx, rst.ID, item)
}

// DeleteItem removes an item from the caller's menu
func (s *MenuService) DeleteItem(ctx context.Context, ownerUID, itemID string) error {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return err
	}
	return s.menuRepo.DeleteItem(ctx, rst.ID, itemID)
}

// ListItems lists all items of the caller's menu, including unavailable ones
func (s *MenuService) ListItems(ctx context.Context, ownerUID string) ([]*models.Item, error) {
	rst, err := s.restaurantOf(ctx, ownerUID)
	if err != nil {
		return nil, err
	}
	return s.menuRepo.ListItems(ctx, rst.ID, false)
}

// PublicMenu builds the customer-facing menu for a slug. Menus of lapsed or
// deactivated tenants are not served.
func (s *MenuService) PublicMenu(ctx context.Context, slug string) (*models.PublicMenu, error) {
	rst, err := s.restaurantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !rst.PlanCurrent(time.Now()) {
		return nil, models.ErrPlanInactive
	}

	categories, err := s.menuRepo.ListCategories(ctx, rst.ID)
	if err != nil {
		return nil, err
	}

	items, err := s.menuRepo.ListItems(ctx, rst.ID, true)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]*models.Item, len(categories))
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	menu := &models.PublicMenu{
		Restaurant: rst,
		Categories: make([]*models.MenuCategory, 0, len(categories)),
	}
	for _, cat := range categories {
		menu.Categories = append(menu.Categories, &models.MenuCategory{
			Category: cat,
			Items:    byCategory[cat.ID],
		})
	}

	return menu, nil
}
