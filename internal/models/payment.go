package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	OfferID       uint            `gorm:"not null;uniqueIndex" json:"offer_id"`
	BuyerID       uint            `gorm:"not null;index" json:"buyer_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	UPIID         string          `gorm:"column:upi_id;type:varchar(100)" json:"upi_id,omitempty"`
	TransactionID *string         `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `gorm:"index" json:"completed_at,omitempty"`

	Buyer User `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentCompleted
}
