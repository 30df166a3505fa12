package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type RatingHandler struct {
	ratings *services.RatingService
}

func NewRatingHandler(ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

type RateRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment" validate:"max=1000"`
}

func (h *RatingHandler) RateTransaction(c *fiber.Ctx) error {
	offerID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req := new(RateRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	rating, err := h.ratings.Rate(c.UserContext(), currentActor(c), offerID, req.Score, req.Comment)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Rating submitted!",
		"rating":  rating,
	})
}

func (h *RatingHandler) GetUserRatings(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	summary, err := h.ratings.Received(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(summary)
}
