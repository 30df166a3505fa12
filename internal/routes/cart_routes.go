package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupCartRoutes(app *fiber.App, d Deps) {
	cart := app.Group("/api/cart", middleware.Protected(d.JWTSecret, d.Accounts))

	cart.Get("/", d.Carts.GetCart)
	cart.Post("/:listingId", d.Carts.AddToCart)
	cart.Delete("/:id", d.Carts.RemoveFromCart)
}
