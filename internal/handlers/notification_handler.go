package handlers

import (
	"github.com/gofiber/fiber/v2"

	"Bazaarly/internal/services"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GetNotifications returns the latest notifications (?limit=, ?unread_only=true).
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID := currentActor(c).ID

	notifications, unreadCount, err := h.notifications.List(
		c.UserContext(), userID, c.QueryInt("limit", 10), c.QueryBool("unread_only", false))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unreadCount,
	})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	unreadCount, err := h.notifications.UnreadCount(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"unread_count": unreadCount,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	notificationID, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	notification, err := h.notifications.MarkRead(c.UserContext(), currentActor(c).ID, notificationID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Notification marked as read",
		"notification": notification,
	})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	updated, err := h.notifications.MarkAllRead(c.UserContext(), currentActor(c).ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "All notifications marked as read",
		"count":   updated,
	})
}
