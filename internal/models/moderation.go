package models

import "time"

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationReviewed ModerationStatus = "reviewed"
)

type ModerationVerdict string

const (
	VerdictApprove ModerationVerdict = "approve"
	VerdictReject  ModerationVerdict = "reject"
)

type ModerationEntry struct {
	ID         uint             `gorm:"primarykey" json:"id"`
	ListingID  uint             `gorm:"not null;index" json:"listing_id"`
	Reason     string           `gorm:"type:text" json:"reason"`
	Status     ModerationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	ReviewedAt *time.Time       `json:"reviewed_at,omitempty"`

	Listing Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
}

func (ModerationEntry) TableName() string {
	return "moderation_queue"
}
