package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/handlers"
	"Bazaarly/internal/middleware"
	"Bazaarly/internal/pkg/ratelimit"
)

// Deps carries everything the route groups hand out to requests.
type Deps struct {
	JWTSecret      string
	Accounts       middleware.UserLookup
	ListingLimiter *ratelimit.RateLimiter

	Users         *handlers.UserHandler
	Admin         *handlers.AdminHandler
	Categories    *handlers.CategoryHandler
	Listings      *handlers.ListingHandler
	Moderation    *handlers.ModerationHandler
	Offers        *handlers.OfferHandler
	Payments      *handlers.PaymentHandler
	Ratings       *handlers.RatingHandler
	Disputes      *handlers.DisputeHandler
	Notifications *handlers.NotificationHandler
	Searches      *handlers.SearchHandler
	Chats         *handlers.ChatHandler
	Carts         *handlers.CartHandler
}

func SetupRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", d.Users.Signup)
	auth.Post("/login", d.Users.Login)

	api.Get("/categories", d.Categories.ListCategories)

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Bazaarly API v1.0",
			"status":  "running",
		})
	})

	SetupUserRoutes(app, d)
	SetupListingRoutes(app, d)
	SetupOfferRoutes(app, d)
	SetupDisputeRoutes(app, d)
	SetupNotificationRoutes(app, d)
	SetupSearchRoutes(app, d)
	SetupChatRoutes(app, d)
	SetupCartRoutes(app, d)
	SetupAdminRoutes(app, d)
}
