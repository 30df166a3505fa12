package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
	"Bazaarly/internal/pkg/ratelimit"
)

func SetupListingRoutes(app *fiber.App, d Deps) {
	listings := app.Group("/api/listings")
	protected := middleware.Protected(d.JWTSecret, d.Accounts)

	// Browse approved listings
	listings.Get("/", d.Listings.ListListings)

	// Seller's own listings, any status
	listings.Get("/mine", protected, d.Listings.MyListings)

	// Detail; sellers and staff also see pending or rejected listings
	listings.Get("/:id", middleware.OptionalAuth(d.JWTSecret, d.Accounts), d.Listings.GetListing)

	listings.Post("/", protected, ratelimit.UserBasedMiddleware(d.ListingLimiter), d.Listings.CreateListing)
	listings.Put("/:id", protected, d.Listings.UpdateListing)
	listings.Delete("/:id/images/:imageId", protected, d.Listings.DeleteImage)

	// Offers on a listing
	listings.Post("/:id/offers", protected, d.Offers.MakeOffer)
	listings.Post("/:id/buy-now", protected, d.Offers.BuyNow)
}
