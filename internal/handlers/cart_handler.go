package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type CartHandler struct {
	carts *services.CartService
}

func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	items, total, err := h.carts.List(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
		"total": total,
	})
}

func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	listingID, err := parseID(c, "listingId")
	if err != nil {
		return respondError(c, err)
	}

	item, created, err := h.carts.Add(c.UserContext(), currentActor(c).ID, listingID)
	if err != nil {
		return respondError(c, err)
	}

	if !created {
		return c.JSON(fiber.Map{
			"message": "This item is already in your cart.",
			"item":    item,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added to cart.",
		"item":    item,
	})
}

func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.carts.Remove(c.UserContext(), currentActor(c).ID, itemID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Item removed from cart."})
}
