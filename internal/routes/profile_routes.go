package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

// SetupUserRoutes sets up profile and public rating routes
func SetupUserRoutes(app *fiber.App, d Deps) {
	users := app.Group("/api/users")

	users.Get("/me", middleware.Protected(d.JWTSecret, d.Accounts), d.Users.GetProfile)

	// Ratings a user received are public
	users.Get("/:id/ratings", d.Ratings.GetUserRatings)
}
