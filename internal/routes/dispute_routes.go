package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupDisputeRoutes(app *fiber.App, d Deps) {
	dispute := app.Group("/api/disputes", middleware.Protected(d.JWTSecret, d.Accounts))

	// Raise a dispute
	dispute.Post("/", d.Disputes.RaiseDispute)

	// Get all my disputes
	dispute.Get("/mine", d.Disputes.GetMyDisputes)

	// Get specific dispute
	dispute.Get("/:id", d.Disputes.GetDispute)
}
