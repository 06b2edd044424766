package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User roles
const (
	RoleOwner      = "owner"
	RoleSuperAdmin = "superadmin"
)

// User represents an account in the admin panel: either a restaurant owner
// or the cross-tenant super-admin.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	RestaurantID *string    `json:"restaurant_id,omitempty"`
	IsVerified   *bool      `json:"is_verified,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Verified reports whether the account has passed email verification.
// Accounts created before the verification flow existed have no flag at all;
// those are grandfathered in as verified.
func (u *User) Verified() bool {
	return u.IsVerified == nil || *u.IsVerified
}

// TokenClaims represents the JWT claims carried by access tokens
type TokenClaims struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
