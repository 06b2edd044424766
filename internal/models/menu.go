package models

import (
	"time"
)

// Item currencies supported on the public menu
const (
	CurrencyUSD = "USD"
	CurrencyLBP = "LBP"
)

// Category groups menu items. Names are bilingual; display order is
// owner-controlled.
type Category struct {
	ID            string    `json:"id"`
	RestaurantID  string    `json:"restaurant_id"`
	NameAr        string    `json:"name_ar"`
	NameEn        string    `json:"name_en"`
	SortOrder     int       `json:"sort_order"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Item is a single dish or product on the menu. Prices are stored verbatim
// with their currency; no conversion happens server-side.
type Item struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurant_id"`
	CategoryID   string    `json:"category_id"`
	NameAr       string    `json:"name_ar"`
	NameEn       string    `json:"name_en"`
	DescAr       string    `json:"desc_ar,omitempty"`
	DescEn       string    `json:"desc_en,omitempty"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"image_url,omitempty"`
	Available    bool      `json:"available"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicMenu is the read model served to customers: branding plus the
// category tree with items.
type PublicMenu struct {
	Restaurant *Restaurant       `json:"restaurant"`
	Categories []*MenuCategory   `json:"categories"`
}

// MenuCategory is a category with its items, as rendered publicly.
type MenuCategory struct {
	Category *Category `json:"category"`
	Items    []*Item   `json:"items"`
}
