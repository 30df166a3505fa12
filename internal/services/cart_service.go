package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Bazaarly/internal/models"
)

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Add puts an approved listing in the user's cart. Adding it again returns
// the existing item with created false.
func (s *CartService) Add(ctx context.Context, userID, listingID uint) (*models.CartItem, bool, error) {
	var item models.CartItem
	var created bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Where("status = ?", models.ListingApproved).First(&listing, listingID).Error; err != nil {
			return notFound("listing", err)
		}
		if listing.SellerID == userID {
			return forbidden("You cannot add your own listing to cart.")
		}

		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
				DoNothing: true,
			}).
			Create(&models.CartItem{UserID: userID, ListingID: listingID})
		if result.Error != nil {
			return fmt.Errorf("failed to add to cart: %w", result.Error)
		}
		created = result.RowsAffected > 0

		if err := tx.Where("user_id = ? AND listing_id = ?", userID, listingID).First(&item).Error; err != nil {
			return notFound("cart item", err)
		}
		item.Listing = &listing
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &item, created, nil
}

// List returns the user's cart, newest first, with the sum of the listing
// prices.
func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, decimal.Decimal, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Images").
		Preload("Listing.Seller").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load cart: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Listing != nil {
			total = total.Add(item.Listing.Price)
		}
	}
	return items, total, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Resource: "cart item"}
	}
	return nil
}
