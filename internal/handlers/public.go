package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/menubox/menubox/internal/models"
	pkghttp "github.com/menubox/menubox/pkg/http"
)

// PublicMenuReader serves the customer-facing menu
type PublicMenuReader interface {
	PublicMenu(ctx context.Context, slug string) (*models.PublicMenu, error)
}

// PublicHandler handles unauthenticated customer reads
type PublicHandler struct {
	menus PublicMenuReader
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(menus PublicMenuReader) *PublicHandler {
	return &PublicHandler{menus: menus}
}

// Menu returns the localized public menu for a restaurant slug
func (h *PublicHandler) Menu(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		pkghttp.WriteBadRequest(w, "missing restaurant slug")
		return
	}

	menu, err := h.menus.PublicMenu(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, menu)
}
