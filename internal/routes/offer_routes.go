package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/middleware"
)

func SetupOfferRoutes(app *fiber.App, d Deps) {
	offers := app.Group("/api/offers", middleware.Protected(d.JWTSecret, d.Accounts))

	offers.Get("/", d.Offers.ListOffers)
	offers.Get("/:id", d.Offers.GetOffer)

	// Seller decisions
	offers.Post("/:id/accept", d.Offers.AcceptOffer)
	offers.Post("/:id/reject", d.Offers.RejectOffer)

	// Payment for an accepted offer
	offers.Post("/:id/payment", d.Payments.StartPayment)
	offers.Post("/:id/payment/submit", d.Payments.SubmitPayment)
	offers.Get("/:id/payment", d.Payments.GetPaymentStatus)

	offers.Post("/:id/rating", d.Ratings.RateTransaction)
}
