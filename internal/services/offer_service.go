package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Bazaarly/internal/models"
)

type OfferService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewOfferService(db *gorm.DB, notifier Notifier) *OfferService {
	return &OfferService{db: db, notifier: notifier}
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// CreateOrUpdateOffer records a buyer's price for a listing. A second call
// overwrites the amount of the same pending offer. The seller is notified
// when the offer is first created.
func (s *OfferService) CreateOrUpdateOffer(ctx context.Context, buyerID, listingID uint, amount decimal.Decimal) (*models.Offer, error) {
	if !amount.IsPositive() {
		return nil, newValidationError("amount", "Offer amount must be greater than zero.")
	}

	var offer *models.Offer
	var sent []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := loadOfferableListing(tx, buyerID, listingID)
		if err != nil {
			return err
		}

		var created bool
		offer, created, err = getOrCreateOffer(tx, buyerID, listing, amount)
		if err != nil {
			return err
		}

		if !created {
			if offer.Status != models.OfferPending {
				return conflict(string(offer.Status), "This offer has already been %s.", offer.Status)
			}
			if err := tx.Model(&models.Offer{}).Where("id = ?", offer.ID).
				Update("amount", amount).Error; err != nil {
				return fmt.Errorf("failed to update offer: %w", err)
			}
			offer.Amount = amount
			return nil
		}

		// Only a new offer notifies the seller; amount changes are silent.
		n, err := s.notifyOfferReceived(ctx, tx, buyerID, offer)
		if err != nil {
			return err
		}
		sent = append(sent, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent...)
	zap.L().Info("Offer recorded",
		zap.Uint("offer_id", offer.ID),
		zap.Uint("listing_id", listingID),
		zap.String("amount", offer.Amount.String()))
	return offer, nil
}

// Accept moves a pending offer to accepted. Only the seller may act.
func (s *OfferService) Accept(ctx context.Context, actor Actor, offerID uint) (*models.Offer, error) {
	return s.decide(ctx, actor, offerID, models.OfferAccepted)
}

// Reject moves a pending offer to rejected. Only the seller may act.
func (s *OfferService) Reject(ctx context.Context, actor Actor, offerID uint) (*models.Offer, error) {
	return s.decide(ctx, actor, offerID, models.OfferRejected)
}

func (s *OfferService) decide(ctx context.Context, actor Actor, offerID uint, status models.OfferStatus) (*models.Offer, error) {
	verb := "accept"
	params := NotifyParams{Type: models.NotificationOfferAccepted, Title: "Offer Accepted!"}
	if status == models.OfferRejected {
		verb = "reject"
		params = NotifyParams{Type: models.NotificationOfferRejected, Title: "Offer Rejected"}
	}

	var offer models.Offer
	var sent []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Listing").First(&offer, offerID).Error; err != nil {
			return notFound("offer", err)
		}
		if offer.SellerID() != actor.ID {
			return forbidden("You don't have permission to %s this offer.", verb)
		}

		result := tx.Model(&models.Offer{}).
			Where("id = ? AND status = ?", offer.ID, models.OfferPending).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update offer: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var current models.Offer
			if err := tx.Select("status").First(&current, offer.ID).Error; err != nil {
				return notFound("offer", err)
			}
			return conflict(string(current.Status), "This offer has already been %s.", current.Status)
		}
		offer.Status = status

		params.UserID = offer.BuyerID
		params.Message = fmt.Sprintf("Your offer of %s for '%s' has been %sed by the seller.",
			rupees(offer.Amount), offer.Listing.Title, verb)
		params.RelatedUserID = uintPtr(actor.ID)
		params.RelatedOfferID = uintPtr(offer.ID)
		params.RelatedListingID = uintPtr(offer.ListingID)

		n, err := s.notifier.Notify(ctx, tx, params)
		if err != nil {
			return err
		}
		sent = append(sent, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent...)
	zap.L().Info("Offer decided", zap.Uint("offer_id", offer.ID), zap.String("status", string(status)))
	return &offer, nil
}

// BuyNowResult is the accepted offer and its payment after the fast path.
type BuyNowResult struct {
	Offer   *models.Offer
	Payment *models.Payment
}

// BuyNow reuses the buyer's offer on the listing whatever its status, forces
// it to accepted at the list price and makes sure a payment row exists. An
// offer whose payment already completed is returned unchanged.
func (s *OfferService) BuyNow(ctx context.Context, buyerID, listingID uint) (*BuyNowResult, error) {
	var result BuyNowResult
	var sent []*models.Notification

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := loadOfferableListing(tx, buyerID, listingID)
		if err != nil {
			return err
		}

		offer, created, err := getOrCreateOffer(tx, buyerID, listing, listing.Price)
		if err != nil {
			return err
		}

		payment, err := findPayment(tx, offer.ID)
		if err != nil {
			return err
		}
		if payment != nil && payment.IsCompleted() {
			result = BuyNowResult{Offer: offer, Payment: payment}
			return nil
		}

		if err := tx.Model(&models.Offer{}).Where("id = ?", offer.ID).Updates(map[string]any{
			"status": models.OfferAccepted,
			"amount": listing.Price,
		}).Error; err != nil {
			return fmt.Errorf("failed to accept offer: %w", err)
		}
		offer.Status = models.OfferAccepted
		offer.Amount = listing.Price

		payment, err = getOrCreatePayment(tx, offer)
		if err != nil {
			return err
		}
		if !payment.Amount.Equal(offer.Amount) {
			if err := tx.Model(&models.Payment{}).Where("id = ? AND status = ?", payment.ID, models.PaymentPending).
				Update("amount", offer.Amount).Error; err != nil {
				return fmt.Errorf("failed to update payment: %w", err)
			}
			payment.Amount = offer.Amount
		}

		if created {
			n, err := s.notifyOfferReceived(ctx, tx, buyerID, offer)
			if err != nil {
				return err
			}
			sent = append(sent, n)
		}

		result = BuyNowResult{Offer: offer, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Deliver(ctx, sent...)
	zap.L().Info("Buy now",
		zap.Uint("offer_id", result.Offer.ID),
		zap.Uint("payment_id", result.Payment.ID),
		zap.String("payment_status", string(result.Payment.Status)))
	return &result, nil
}

// ListForUser returns offers the user made or received, newest first.
func (s *OfferService) ListForUser(ctx context.Context, userID uint) ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Buyer").
		Preload("Payment").
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("offers.buyer_id = ? OR listings.seller_id = ?", userID, userID).
		Order("offers.updated_at DESC").
		Order("offers.id DESC").
		Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve offers: %w", err)
	}
	return offers, nil
}

// Get returns an offer to its buyer or seller.
func (s *OfferService) Get(ctx context.Context, actor Actor, offerID uint) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Buyer").
		Preload("Payment").
		First(&offer, offerID).Error; err != nil {
		return nil, notFound("offer", err)
	}
	if !offer.IsParty(actor.ID) {
		return nil, forbidden("You don't have permission to view this offer.")
	}
	return &offer, nil
}

func (s *OfferService) notifyOfferReceived(ctx context.Context, tx *gorm.DB, buyerID uint, offer *models.Offer) (*models.Notification, error) {
	var buyer models.User
	if err := tx.Select("id", "username").First(&buyer, buyerID).Error; err != nil {
		return nil, notFound("user", err)
	}

	return s.notifier.Notify(ctx, tx, NotifyParams{
		UserID:           offer.Listing.SellerID,
		Type:             models.NotificationOfferReceived,
		Title:            "New Offer Received",
		Message:          fmt.Sprintf("%s made an offer of %s on your listing '%s'", buyer.Username, rupees(offer.Amount), offer.Listing.Title),
		RelatedUserID:    uintPtr(buyerID),
		RelatedOfferID:   uintPtr(offer.ID),
		RelatedListingID: uintPtr(offer.ListingID),
	})
}

func loadOfferableListing(tx *gorm.DB, buyerID, listingID uint) (*models.Listing, error) {
	var listing models.Listing
	if err := tx.First(&listing, listingID).Error; err != nil {
		return nil, notFound("listing", err)
	}
	if listing.SellerID == buyerID {
		return nil, forbidden("You cannot make an offer on your own listing.")
	}
	if listing.Status != models.ListingApproved {
		return nil, conflict(string(listing.Status), "This listing is %s and not open for offers.", listing.Status)
	}
	return &listing, nil
}

// getOrCreateOffer serializes on the (buyer_id, listing_id) unique index: the
// insert is skipped on conflict and the surviving row is read back.
func getOrCreateOffer(tx *gorm.DB, buyerID uint, listing *models.Listing, amount decimal.Decimal) (*models.Offer, bool, error) {
	candidate := models.Offer{
		BuyerID:   buyerID,
		ListingID: listing.ID,
		Amount:    amount,
		Status:    models.OfferPending,
	}
	result := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "buyer_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(&candidate)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create offer: %w", result.Error)
	}
	created := result.RowsAffected > 0

	var offer models.Offer
	if err := tx.Where("buyer_id = ? AND listing_id = ?", buyerID, listing.ID).First(&offer).Error; err != nil {
		return nil, false, notFound("offer", err)
	}
	offer.Listing = *listing
	return &offer, created, nil
}

func findPayment(tx *gorm.DB, offerID uint) (*models.Payment, error) {
	var payments []models.Payment
	if err := tx.Where("offer_id = ?", offerID).Limit(1).Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

// getOrCreatePayment serializes on the offer_id unique index the same way
// getOrCreateOffer does.
func getOrCreatePayment(tx *gorm.DB, offer *models.Offer) (*models.Payment, error) {
	candidate := models.Payment{
		OfferID: offer.ID,
		BuyerID: offer.BuyerID,
		Amount:  offer.Amount,
		Status:  models.PaymentPending,
	}
	if err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "offer_id"}},
			DoNothing: true,
		}).
		Create(&candidate).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	var payment models.Payment
	if err := tx.Where("offer_id = ?", offer.ID).First(&payment).Error; err != nil {
		return nil, notFound("payment", err)
	}
	return &payment, nil
}
