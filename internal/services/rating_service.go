package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Bazaarly/internal/models"
)

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// Rate records the actor's score for the counterparty of a paid offer.
// Rating the same offer again updates the earlier score.
func (s *RatingService) Rate(ctx context.Context, actor Actor, offerID uint, score int, comment string) (*models.Rating, error) {
	var rating models.Rating

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.Preload("Listing").Preload("Payment").First(&offer, offerID).Error; err != nil {
			return notFound("transaction", err)
		}
		if !offer.IsParty(actor.ID) {
			return forbidden("You don't have permission to rate this user.")
		}
		if offer.Status != models.OfferAccepted {
			return conflict(string(offer.Status), "You can only rate after an accepted transaction.")
		}
		if offer.Payment == nil || !offer.Payment.IsCompleted() {
			return conflict("unpaid", "You can only rate users you have completed transactions with.")
		}
		if score < 1 || score > 5 {
			return newValidationError("score", "Rating must be between 1 and 5.")
		}

		rated := offer.SellerID()
		if actor.ID == rated {
			rated = offer.BuyerID
		}

		rating = models.Rating{
			RaterID:     actor.ID,
			RatedUserID: rated,
			OfferID:     offer.ID,
			Score:       score,
			Comment:     strings.TrimSpace(comment),
		}
		if err := tx.Omit("Rater").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "rater_id"}, {Name: "rated_user_id"}, {Name: "offer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return fmt.Errorf("failed to save rating: %w", err)
		}

		var saved models.Rating
		if err := tx.Where("rater_id = ? AND rated_user_id = ? AND offer_id = ?", actor.ID, rated, offer.ID).
			First(&saved).Error; err != nil {
			return notFound("rating", err)
		}
		rating = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

type RatingSummary struct {
	Ratings []models.Rating `json:"ratings"`
	Average float64         `json:"average"`
	Count   int             `json:"count"`
}

// Received lists ratings a user received with their average score.
func (s *RatingService) Received(ctx context.Context, userID uint) (*RatingSummary, error) {
	var ratings []models.Rating
	if err := s.db.WithContext(ctx).
		Preload("Rater").
		Where("rated_user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve ratings: %w", err)
	}

	summary := &RatingSummary{Ratings: ratings, Count: len(ratings)}
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r.Score
		}
		summary.Average = float64(total) / float64(len(ratings))
	}
	return summary, nil
}
