package models

import "time"

// CartItem holds a listing a user has set aside. A listing sits in a cart
// at most once.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_listing" json:"user_id"`
	ListingID uint      `gorm:"not null;uniqueIndex:idx_cart_user_listing;index" json:"listing_id"`
	CreatedAt time.Time `json:"added_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Listing *Listing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
