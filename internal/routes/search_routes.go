package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupSearchRoutes(app *fiber.App, d Deps) {
	searches := app.Group("/api/saved-searches", middleware.Protected(d.JWTSecret, d.Accounts))

	searches.Get("/", d.Searches.ListSearches)
	searches.Post("/", d.Searches.SaveSearch)
	searches.Delete("/:id", d.Searches.DeleteSearch)
}
