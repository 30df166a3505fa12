package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

// NotifyParams describes one notification record.
type NotifyParams struct {
	UserID           uint
	Type             models.NotificationType
	Title            string
	Message          string
	RelatedUserID    *uint
	RelatedOfferID   *uint
	RelatedListingID *uint
}

// Notifier writes notification records inside the caller's transaction and
// delivers out-of-band copies once that transaction has committed.
type Notifier interface {
	Notify(ctx context.Context, db *gorm.DB, p NotifyParams) (*models.Notification, error)
	Deliver(ctx context.Context, notifications ...*models.Notification)
}

type NotificationService struct {
	db     *gorm.DB
	mailer Mailer
}

// NewNotificationService builds the notifier. mailer may be nil, which
// disables email copies.
func NewNotificationService(db *gorm.DB, mailer Mailer) *NotificationService {
	return &NotificationService{db: db, mailer: mailer}
}

// Notify creates a notification using db, which is normally the caller's
// transaction handle.
func (s *NotificationService) Notify(ctx context.Context, db *gorm.DB, p NotifyParams) (*models.Notification, error) {
	notification := models.Notification{
		UserID:           p.UserID,
		Type:             p.Type,
		Title:            p.Title,
		Message:          p.Message,
		RelatedUserID:    p.RelatedUserID,
		RelatedOfferID:   p.RelatedOfferID,
		RelatedListingID: p.RelatedListingID,
		IsRead:           false,
	}

	if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return &notification, nil
}

// Deliver emails a copy of each notification. Failures are logged only.
func (s *NotificationService) Deliver(ctx context.Context, notifications ...*models.Notification) {
	if s.mailer == nil {
		return
	}

	for _, n := range notifications {
		if n == nil {
			continue
		}

		var user models.User
		if err := s.db.WithContext(ctx).Select("id", "email").First(&user, n.UserID).Error; err != nil {
			zap.L().Warn("Skipping notification email, recipient not loaded",
				zap.Uint("notification_id", n.ID), zap.Error(err))
			continue
		}
		if user.Email == "" {
			continue
		}

		body := fmt.Sprintf("<p>%s</p>", html.EscapeString(n.Message))
		if err := s.mailer.Send(ctx, user.Email, n.Title, body); err != nil {
			zap.L().Warn("Failed to email notification",
				zap.Uint("notification_id", n.ID), zap.Uint("user_id", n.UserID), zap.Error(err))
		}
	}
}

// List returns the latest notifications for the user plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve notifications: %w", err)
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var unreadCount int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unreadCount).Error; err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return unreadCount, nil
}

// MarkRead flips is_read on one of the user's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error; err != nil {
		return nil, notFound("notification", err)
	}

	if !notification.IsRead {
		now := time.Now()
		if err := s.db.WithContext(ctx).Model(&notification).Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to mark notification as read: %w", err)
		}
		notification.IsRead = true
		notification.ReadAt = &now
	}

	return &notification, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func uintPtr(v uint) *uint {
	return &v
}
