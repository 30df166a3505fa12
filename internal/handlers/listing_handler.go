package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"Bazaarly/internal/services"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// listingRequest is read from multipart forms and JSON alike.
type listingRequest struct {
	Title       string      `json:"title" form:"title"`
	Description string      `json:"description" form:"description"`
	Price       json.Number `json:"price" form:"price"`
	CategoryID  json.Number `json:"category_id" form:"category_id"`
}

func (r listingRequest) toInput() (services.ListingInput, error) {
	input := services.ListingInput{
		Title:       r.Title,
		Description: r.Description,
	}

	// An unparsable price stays zero so the ordered field checks report it.
	if price, err := decimal.NewFromString(strings.TrimSpace(r.Price.String())); err == nil {
		input.Price = price
	}

	if raw := strings.TrimSpace(r.CategoryID.String()); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return input, &services.ValidationError{Field: "category_id", Message: "Invalid category"}
		}
		categoryID := uint(id)
		input.CategoryID = &categoryID
	}

	return input, nil
}

func readListingForm(c *fiber.Ctx) (services.ListingInput, []services.ImageFile, error) {
	var req listingRequest
	if err := c.BodyParser(&req); err != nil {
		return services.ListingInput{}, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	input, err := req.toInput()
	if err != nil {
		return input, nil, err
	}

	var images []services.ImageFile
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			images = append(images, services.ImageFromFileHeader(fh))
		}
	}

	return input, images, nil
}

// CreateListing accepts a multipart submission with optional "images" files.
func (h *ListingHandler) CreateListing(c *fiber.Ctx) error {
	actor := currentActor(c)

	input, images, err := readListingForm(c)
	if err != nil {
		return respondError(c, err)
	}

	listing, err := h.listings.CreateListing(c.UserContext(), actor.ID, input, images)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Your listing has been submitted and is pending moderation review.",
		"listing": listing,
	})
}

func (h *ListingHandler) UpdateListing(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	input, images, err := readListingForm(c)
	if err != nil {
		return respondError(c, err)
	}

	listing, err := h.listings.UpdateListing(c.UserContext(), currentActor(c), listingID, input, images)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Listing updated successfully!",
		"listing": listing,
	})
}

func (h *ListingHandler) DeleteImage(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	imageID, err := parseID(c, "imageId")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.listings.DeleteImage(c.UserContext(), currentActor(c), listingID, imageID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Image deleted successfully."})
}

// ListListings is the public catalogue: ?q=, ?category=, ?limit=.
func (h *ListingHandler) ListListings(c *fiber.Ctx) error {
	filter := services.ListingFilter{
		Query: c.Query("q"),
		Limit: c.QueryInt("limit", 0),
	}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	listings, err := h.listings.ListApproved(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"count":    len(listings),
	})
}

func (h *ListingHandler) MyListings(c *fiber.Ctx) error {
	listings, err := h.listings.ListBySeller(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"count":    len(listings),
	})
}

func (h *ListingHandler) GetListing(c *fiber.Ctx) error {
	listingID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	listing, err := h.listings.Get(c.UserContext(), currentActor(c), listingID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"listing": listing})
}
