package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Offer doubles as the transaction record once accepted. A buyer holds at
// most one offer per listing.
type Offer struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	BuyerID   uint            `gorm:"not null;uniqueIndex:idx_offers_buyer_listing" json:"buyer_id"`
	ListingID uint            `gorm:"not null;uniqueIndex:idx_offers_buyer_listing;index" json:"listing_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status    OfferStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Buyer   *User    `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"buyer,omitempty"`
	Listing Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Payment *Payment `gorm:"foreignKey:OfferID" json:"payment,omitempty"`
}

func (Offer) TableName() string {
	return "offers"
}

// SellerID is only meaningful when Listing has been loaded.
func (o *Offer) SellerID() uint {
	return o.Listing.SellerID
}

// IsParty reports whether userID is the buyer or the seller of the offer.
func (o *Offer) IsParty(userID uint) bool {
	return userID == o.BuyerID || userID == o.Listing.SellerID
}
