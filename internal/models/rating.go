package models

import "time"

type Rating struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RaterID     uint      `gorm:"not null;uniqueIndex:idx_ratings_rater_rated_offer" json:"rater_id"`
	RatedUserID uint      `gorm:"not null;uniqueIndex:idx_ratings_rater_rated_offer;index" json:"rated_user_id"`
	OfferID     uint      `gorm:"not null;uniqueIndex:idx_ratings_rater_rated_offer" json:"transaction_id"`
	Score       int       `gorm:"not null" json:"score"`
	Comment     string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Rater *User `gorm:"foreignKey:RaterID;constraint:OnDelete:CASCADE" json:"rater,omitempty"`
}

func (Rating) TableName() string {
	return "ratings"
}
