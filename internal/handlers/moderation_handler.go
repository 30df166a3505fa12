package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/models"
	"Bazaarly/internal/services"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

type DecideRequest struct {
	Verdict string `json:"verdict" validate:"required,oneof=approve reject"`
}

// GetQueue lists pending moderation entries, oldest first.
func (h *ModerationHandler) GetQueue(c *fiber.Ctx) error {
	entries, err := h.moderation.ListPending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *ModerationHandler) Decide(c *fiber.Ctx) error {
	entryID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req := new(DecideRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	decision, err := h.moderation.Decide(c.UserContext(), entryID, models.ModerationVerdict(req.Verdict))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":     decision.Listing.Status,
		"listing_id": decision.Listing.ID,
		"entry_id":   decision.Entry.ID,
	})
}
