package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"max=2000"`
}

// optionalOfferID reads ?offer_id=, returning nil when it is absent.
func optionalOfferID(c *fiber.Ctx) (*uint, error) {
	raw := c.Query("offer_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid offer_id")
	}
	offerID := uint(id)
	return &offerID, nil
}

// GetConversation returns the chat with :userId (?offer_id= narrows it).
func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	otherID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	offerID, err := optionalOfferID(c)
	if err != nil {
		return respondError(c, err)
	}

	messages, err := h.chats.Conversation(c.UserContext(), currentActor(c).ID, otherID, offerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	otherID, err := parseID(c, "userId")
	if err != nil {
		return respondError(c, err)
	}
	offerID, err := optionalOfferID(c)
	if err != nil {
		return respondError(c, err)
	}

	req := new(SendMessageRequest)
	if err := parseBody(c, req); err != nil {
		return respondError(c, err)
	}

	message, err := h.chats.Send(c.UserContext(), currentActor(c).ID, otherID, offerID, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent.",
		"data":    message,
	})
}
