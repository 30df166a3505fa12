package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

// Listing.Status is written only by the listing lifecycle and moderation
// services; seller edits touch content fields only.
type Listing struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	SellerID    uint            `gorm:"not null;index" json:"seller_id"`
	Title       string          `gorm:"type:varchar(200);not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	Status      ListingStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Flags       int             `gorm:"not null;default:0" json:"flags"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Seller   *User          `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
	Category *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []ListingImage `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

type ListingImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	PublicID  string    `gorm:"type:text" json:"public_id,omitempty"`
	FileName  string    `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (ListingImage) TableName() string {
	return "listing_images"
}
