package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/models"
	"github.com/menubox/menubox/internal/services"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// RestaurantServiceInterface defines the interface for restaurant management
type RestaurantServiceInterface interface {
	Create(ctx context.Context, ownerUID string, input services.CreateRestaurantInput) (*models.Restaurant, error)
	GetMine(ctx context.Context, ownerUID string) (*models.Restaurant, error)
	UpdateBranding(ctx context.Context, ownerUID string, branding *models.Branding) (*models.Restaurant, error)
	QRCodePNG(ctx context.Context, ownerUID string, size int) ([]byte, error)
}

// RestaurantHandler handles owner restaurant management
type RestaurantHandler struct {
	service RestaurantServiceInterface
}

// NewRestaurantHandler creates a new RestaurantHandler
func NewRestaurantHandler(service RestaurantServiceInterface) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// CreateRestaurantRequest represents the request body for restaurant setup
type CreateRestaurantRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=120"`
	Slug              string `json:"slug" validate:"omitempty,max=60"`
	Phone             string `json:"phone" validate:"omitempty,max=32"`
	WhatsappPhoneE164 string `json:"whatsapp_phone_e164" validate:"omitempty,e164"`
	Address           string `json:"address" validate:"omitempty,max=240"`
}

// Create sets up the caller's restaurant
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rst, err := h.service.Create(r.Context(), claims.UserID, services.CreateRestaurantInput{
		Name:              req.Name,
		Slug:              req.Slug,
		Phone:             req.Phone,
		WhatsappPhoneE164: req.WhatsappPhoneE164,
		Address:           req.Address,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, rst)
}

// GetMine returns the caller's restaurant
func (h *RestaurantHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	rst, err := h.service.GetMine(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, rst)
}

// UpdateBranding replaces the caller's restaurant branding
func (h *RestaurantHandler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var branding models.Branding
	if err := json.NewDecoder(r.Body).Decode(&branding); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	rst, err := h.service.UpdateBranding(r.Context(), claims.UserID, &branding)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, rst)
}

// QRCode streams the PNG QR image of the caller's public menu URL
func (h *RestaurantHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	size := 512
	if s := r.URL.Query().Get("size"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			size = parsed
		}
	}

	png, err := h.service.QRCodePNG(r.Context(), claims.UserID, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
