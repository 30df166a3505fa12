package models

import (
	"time"

	"gorm.io/datatypes"
)

// SavedSearch filters are free-form JSON: category_id, min_price, max_price.
type SavedSearch struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	Query     string            `gorm:"type:varchar(255);not null" json:"query"`
	Filters   datatypes.JSONMap `json:"filters"`
	CreatedAt time.Time         `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SavedSearch) TableName() string {
	return "saved_searches"
}
