package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupNotificationRoutes(app *fiber.App, d Deps) {
	// Notification routes (all require authentication)
	notifications := app.Group("/api/notifications", middleware.Protected(d.JWTSecret, d.Accounts))

	notifications.Get("/", d.Notifications.GetNotifications)
	notifications.Get("/unread-count", d.Notifications.GetUnreadCount)

	notifications.Put("/read-all", d.Notifications.MarkAllAsRead)
	notifications.Put("/:id/read", d.Notifications.MarkAsRead)
}
