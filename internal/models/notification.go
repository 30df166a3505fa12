package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationOfferReceived    NotificationType = "offer_received"
	NotificationOfferAccepted    NotificationType = "offer_accepted"
	NotificationOfferRejected    NotificationType = "offer_rejected"
	NotificationPaymentReceived  NotificationType = "payment_received"
	NotificationListingRejected  NotificationType = "listing_rejected"
	NotificationDisputeReported  NotificationType = "dispute_reported"
	NotificationSavedSearchMatch NotificationType = "saved_search_match"
	NotificationMessageReceived  NotificationType = "message_received"
)

type Notification struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	UserID           uint             `json:"user_id" gorm:"not null;index:idx_notifications_user_read"`
	Type             NotificationType `json:"type" gorm:"type:varchar(50);not null"`
	Title            string           `json:"title" gorm:"type:varchar(255);not null"`
	Message          string           `json:"message" gorm:"type:text;not null"`
	RelatedUserID    *uint            `json:"related_user_id,omitempty" gorm:"index"`
	RelatedOfferID   *uint            `json:"related_offer_id,omitempty" gorm:"index"`
	RelatedListingID *uint            `json:"related_listing_id,omitempty" gorm:"index"`
	IsRead           bool             `json:"is_read" gorm:"default:false;index:idx_notifications_user_read"`
	CreatedAt        time.Time        `json:"created_at"`
	ReadAt           *time.Time       `json:"read_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate hook
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}
