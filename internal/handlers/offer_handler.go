package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Bazaarly/internal/services"
)

type OfferHandler struct {
	offers *services.OfferService
}

func NewOfferHandler(offers *services.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

type CreateOfferRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// MakeOffer creates the buyer's offer on a listing or updates its amount.
func (h *OfferHandler) MakeOffer(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req := new(CreateOfferRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	offer, err := h.offers.CreateOrUpdateOffer(c.UserContext(), currentActor(c).ID, listingID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Offer of ₹" + offer.Amount.StringFixed(2) + " submitted!",
		"offer":   offer,
	})
}

// BuyNow accepts the listing at its list price and opens the payment step.
func (h *OfferHandler) BuyNow(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	result, err := h.offers.BuyNow(c.UserContext(), currentActor(c).ID, listingID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"offer":   result.Offer,
		"payment": result.Payment,
	})
}

func (h *OfferHandler) AcceptOffer(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	offer, err := h.offers.Accept(c.UserContext(), currentActor(c), offerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Offer of ₹" + offer.Amount.StringFixed(2) + " has been accepted!",
		"offer":   offer,
	})
}

func (h *OfferHandler) RejectOffer(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	offer, err := h.offers.Reject(c.UserContext(), currentActor(c), offerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Offer rejected.",
		"offer":   offer,
	})
}

func (h *OfferHandler) ListOffers(c *fiber.Ctx) error {
	offers, err := h.offers.ListForUser(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"offers": offers,
		"count":  len(offers),
	})
}

func (h *OfferHandler) GetOffer(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	offer, err := h.offers.Get(c.UserContext(), currentActor(c), offerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"offer": offer})
}
