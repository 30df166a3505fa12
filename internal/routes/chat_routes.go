package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupChatRoutes(app *fiber.App, d Deps) {
	chat := app.Group("/api/chat", middleware.Protected(d.JWTSecret, d.Accounts))

	chat.Get("/:userId", d.Chats.GetConversation)
	chat.Post("/:userId", d.Chats.SendMessage)
}
