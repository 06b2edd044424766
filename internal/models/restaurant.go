package models

import (
	"time"
)

// Plan statuses for a restaurant's subscription
const (
	PlanTrial    = "trial"
	PlanActive   = "active"
	PlanPastDue  = "past_due"
	PlanDisabled = "disabled"
)

// Theme holds the public menu color scheme chosen by the owner.
type Theme struct {
	Mode       string `json:"mode"` // "light" or "dark"
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

// ContactInfo is the contact block shown on the public menu.
type ContactInfo struct {
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Hours   string `json:"hours,omitempty"`
}

// Branding is the owner-configurable appearance of the public menu page.
type Branding struct {
	LogoURL      string       `json:"logo_url,omitempty"`
	DisplayName  string       `json:"display_name,omitempty"`
	HeroImageURL string       `json:"hero_image_url,omitempty"`
	Contact      *ContactInfo `json:"contact,omitempty"`
	Theme        Theme        `json:"theme"`
}

// Restaurant is a single tenant: one owner, one public menu page.
type Restaurant struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	OwnerUID           string     `json:"owner_uid"`
	Phone              string     `json:"phone,omitempty"`
	WhatsappPhoneE164  string     `json:"whatsapp_phone_e164,omitempty"`
	Address            string     `json:"address,omitempty"`
	IsActive           bool       `json:"is_active"`
	PlanStatus         string     `json:"plan_status"`
	TrialEndsAt        time.Time  `json:"trial_ends_at"`
	SubscriptionEndsAt *time.Time `json:"subscription_ends_at,omitempty"`
	BillingNote        string     `json:"billing_note,omitempty"`
	Branding           Branding   `json:"branding"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// PlanCurrent reports whether the plan grants access at the given instant.
// Trials are current until trial_ends_at; active plans until
// subscription_ends_at when one is set.
func (r *Restaurant) PlanCurrent(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	switch r.PlanStatus {
	case PlanTrial:
		return now.Before(r.TrialEndsAt)
	case PlanActive:
		return r.SubscriptionEndsAt == nil || now.Before(*r.SubscriptionEndsAt)
	default:
		return false
	}
}
