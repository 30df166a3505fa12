package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type SaveSearchRequest struct {
	Query   string         `json:"query" validate:"required,max=255"`
	Filters map[string]any `json:"filters"`
}

func (h *SearchHandler) SaveSearch(c *fiber.Ctx) error {
	req := new(SaveSearchRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	search, err := h.search.CreateSavedSearch(c.UserContext(), currentActor(c).ID, req.Query, req.Filters)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"saved_search": search})
}

func (h *SearchHandler) ListSearches(c *fiber.Ctx) error {
	searches, err := h.search.ListSavedSearches(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"saved_searches": searches,
		"count":          len(searches),
	})
}

func (h *SearchHandler) DeleteSearch(c *fiber.Ctx) error {
	searchID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.search.DeleteSavedSearch(c.UserContext(), currentActor(c).ID, searchID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Saved search deleted"})
}
