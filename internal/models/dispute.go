package models

import "time"

type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
	DisputeClosed   DisputeStatus = "closed"
)

type Dispute struct {
	ID         uint          `gorm:"primarykey" json:"id"`
	ReporterID uint          `gorm:"not null;index" json:"reporter_id"`
	OfferID    uint          `gorm:"not null;index" json:"transaction_id"`
	Reason     string        `gorm:"type:text;not null" json:"reason"`
	Status     DisputeStatus `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`

	Reporter *User `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter,omitempty"`
	Offer    Offer `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"transaction,omitempty"`
}

func (Dispute) TableName() string {
	return "disputes"
}
