package models

import "time"

// Message is one chat line between the two parties of an offer. OfferID is
// nil for conversations opened from a user's profile.
type Message struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SenderID   uint      `gorm:"not null;index:idx_messages_pair" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index:idx_messages_pair" json:"receiver_id"`
	OfferID    *uint     `gorm:"index" json:"offer_id,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`

	Sender   *User  `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User  `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Offer    *Offer `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}
