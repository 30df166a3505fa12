package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupAdminRoutes(app *fiber.App, d Deps) {
	admin := app.Group("/api/admin", middleware.Protected(d.JWTSecret, d.Accounts), middleware.AdminOnly())

	// Dashboard
	admin.Get("/dashboard", d.Admin.GetDashboardStats)

	// User Management
	admin.Get("/users", d.Admin.GetAllUsers)
	admin.Post("/users/:id/suspend", d.Admin.SuspendUser)
	admin.Post("/users/:id/unsuspend", d.Admin.UnsuspendUser)

	// Moderation queue
	admin.Get("/moderation", d.Moderation.GetQueue)
	admin.Post("/moderation/:id/decide", d.Moderation.Decide)

	// Dispute Management
	admin.Get("/disputes", d.Disputes.GetAllDisputes)
	admin.Put("/disputes", d.Disputes.UpdateDisputes)
	admin.Post("/disputes/:id/resolve", d.Disputes.ResolveDispute)
	admin.Post("/disputes/:id/close", d.Disputes.CloseDispute)
}
