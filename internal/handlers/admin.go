package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// BillingServiceInterface defines the interface for cross-tenant billing
type BillingServiceInterface interface {
	ListRestaurants(ctx context.Context, limit, offset int) ([]*models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	UpdatePlan(ctx context.Context, adminUID, restaurantID string, input services.UpdatePlanInput) (*models.Restaurant, error)
}

// AdminHandler handles super-admin billing management
type AdminHandler struct {
	service BillingServiceInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service BillingServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// UpdatePlanRequest represents the request body for a billing update
type UpdatePlanRequest struct {
	PlanStatus         string     `json:"plan_status" validate:"required,oneof=trial active past_due disabled"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at"`
	BillingNote        string     `json:"billing_note" validate:"omitempty,max=500"`
	IsActive           bool       `json:"is_active"`
}

// ListRestaurants lists all tenants
func (h *AdminHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	restaurants, err := h.service.ListRestaurants(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, restaurants)
}

// GetRestaurant returns one tenant
func (h *AdminHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	rst, err := h.service.GetRestaurant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, rst)
}

// UpdatePlan updates a tenant's billing state
func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rst, err := h.service.UpdatePlan(r.Context(), claims.UserID, chi.URLParam(r, "id"), services.UpdatePlanInput{
		PlanStatus:         req.PlanStatus,
		SubscriptionEndsAt: req.SubscriptionEndsAt,
		BillingNote:        req.BillingNote,
		IsActive:           req.IsActive,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, rst)
}
