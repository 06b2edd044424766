package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/menubox/menubox/internal/auth"
	"github.com/menubox/menubox/internal/handlers"
	"github.com/menubox/menubox/internal/middleware"
	"github.com/menubox/menubox/internal/models"
)

// RegisterRoutes registers all application routes. The verification
// endpoints sit inside the authenticated group but outside the verified
// gate; everything else owner-facing requires a verified account.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	verificationHandler *handlers.VerificationHandler,
	restaurantHandler *handlers.RestaurantHandler,
	menuHandler *handlers.MenuHandler,
	publicHandler *handlers.PublicHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	userRepo auth.UserRepository,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	redeemRateLimit := middleware.DefaultRedeemRateLimit()

	// Public routes - no authentication required
	router.Get("/public/menu/{slug}", publicHandler.Menu)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/signup", authHandler.Signup)
	router.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", authHandler.Login)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))

		r.Get("/auth/me", authHandler.Me)

		// Verification flow: reachable while still unverified
		r.Get("/verification/status", verificationHandler.Status)
		r.With(middleware.RateLimitByIP(redeemRateLimit)).Post("/verification/resend", verificationHandler.Resend)
		r.With(middleware.RateLimitByIP(redeemRateLimit)).Post("/verification/redeem", verificationHandler.Redeem)

		// Owner routes behind the verified gate
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleOwner))
			r.Use(auth.RequireVerified(userRepo))

			r.Post("/restaurants", restaurantHandler.Create)
			r.Get("/restaurants/mine", restaurantHandler.GetMine)
			r.Put("/restaurants/mine/branding", restaurantHandler.UpdateBranding)
			r.Get("/restaurants/mine/qr", restaurantHandler.QRCode)

			r.Get("/menu/categories", menuHandler.ListCategories)
			r.Post("/menu/categories", menuHandler.CreateCategory)
			r.Put("/menu/categories/{id}", menuHandler.UpdateCategory)
			r.Delete("/menu/categories/{id}", menuHandler.DeleteCategory)

			r.Get("/menu/items", menuHandler.ListItems)
			r.Post("/menu/items", menuHandler.CreateItem)
			r.Put("/menu/items/{id}", menuHandler.UpdateItem)
			r.Delete("/menu/items/{id}", menuHandler.DeleteItem)
		})

		// Super-admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleSuperAdmin))

			r.Get("/admin/restaurants", adminHandler.ListRestaurants)
			r.Get("/admin/restaurants/{id}", adminHandler.GetRestaurant)
			r.Put("/admin/restaurants/{id}/plan", adminHandler.UpdatePlan)
		})
	})
}
