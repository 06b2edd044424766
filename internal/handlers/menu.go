package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/models"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// MenuServiceInterface defines the interface for menu content management
type MenuServiceInterface interface {
	CreateCategory(ctx context.Context, ownerUID string, cat *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, ownerUID string, cat *models.Category) error
	DeleteCategory(ctx context.Context, ownerUID, categoryID string) error
	ListCategories(ctx context.Context, ownerUID string) ([]*models.Category, error)
	CreateItem(ctx context.Context, ownerUID string, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, ownerUID string, item *models.Item) error
	DeleteItem(ctx context.Context, ownerUID, itemID string) error
	ListItems(ctx context.Context, ownerUID string) ([]*models.Item, error)
}

// MenuHandler handles owner menu management
type MenuHandler struct {
	service MenuServiceInterface
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(service MenuServiceInterface) *MenuHandler {
	return &MenuHandler{service: service}
}

// CategoryRequest represents the request body for category create/update
type CategoryRequest struct {
	NameAr        string `json:"name_ar" validate:"required,max=120"`
	NameEn        string `json:"name_en" validate:"required,max=120"`
	SortOrder     int    `json:"sort_order"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

// ItemRequest represents the request body for item create/update
type ItemRequest struct {
	CategoryID string  `json:"category_id" validate:"required"`
	NameAr     string  `json:"name_ar" validate:"required,max=120"`
	NameEn     string  `json:"name_en" validate:"required,max=120"`
	DescAr     string  `json:"desc_ar" validate:"omitempty,max=500"`
	DescEn     string  `json:"desc_en" validate:"omitempty,max=500"`
	Price      float64 `json:"price" validate:"gte=0"`
	Currency   string  `json:"currency" validate:"required,oneof=USD LBP"`
	ImageURL   string  `json:"image_url" validate:"omitempty,url"`
	Available  bool    `json:"available"`
	SortOrder  int     `json:"sort_order"`
}

func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

// ListCategories lists the caller's categories
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	categories, err := h.service.ListCategories(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), uid, &models.Category{
		NameAr:        req.NameAr,
		NameEn:        req.NameEn,
		SortOrder:     req.SortOrder,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, cat)
}

// UpdateCategory updates a category
func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.UpdateCategory(r.Context(), uid, &models.Category{
		ID:            chi.URLParam(r, "id"),
		NameAr:        req.NameAr,
		NameEn:        req.NameEn,
		SortOrder:     req.SortOrder,
		CoverImageURL: req.CoverImageURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteCategory removes a category and its items
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListItems lists all the caller's items
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListItems(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, items)
}

// CreateItem adds a menu item
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	item, err := h.service.CreateItem(r.Context(), uid, &models.Item{
		CategoryID: req.CategoryID,
		NameAr:     req.NameAr,
		NameEn:     req.NameEn,
		DescAr:     req.DescAr,
		DescEn:     req.DescEn,
		Price:      req.Price,
		Currency:   req.Currency,
		ImageURL:   req.ImageURL,
		Available:  req.Available,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, item)
}

// UpdateItem updates a menu item
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.UpdateItem(r.Context(), uid, &models.Item{
		ID:         chi.URLParam(r, "id"),
		CategoryID: req.CategoryID,
		NameAr:     req.NameAr,
		NameEn:     req.NameEn,
		DescAr:     req.DescAr,
		DescEn:     req.DescEn,
		Price:      req.Price,
		Currency:   req.Currency,
		ImageURL:   req.ImageURL,
		Available:  req.Available,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteItem removes a menu item
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
