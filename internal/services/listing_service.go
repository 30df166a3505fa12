package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

const (
	minTitleLength       = 10
	minDescriptionLength = 50
	defaultListingLimit  = 20
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID      uint
	IsStaff bool
}

type ListingInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  *uint
}

// normalize trims the text fields and checks them in order, returning the
// first violation.
func (in ListingInput) normalize() (ListingInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if utf8.RuneCountInString(in.Title) < minTitleLength {
		return in, newValidationError("title", "Title must be at least %d characters long", minTitleLength)
	}
	if utf8.RuneCountInString(in.Description) < minDescriptionLength {
		return in, newValidationError("description", "Description must be at least %d characters long", minDescriptionLength)
	}
	if !in.Price.IsPositive() {
		return in, newValidationError("price", "Price must be greater than zero")
	}
	return in, nil
}

type ListingFilter struct {
	Query      string
	CategoryID *uint
	Limit      int
}

// ListingTransition carries the status before and after a write so callers
// can react to the edge instead of the level.
type ListingTransition struct {
	Old models.ListingStatus
	New models.ListingStatus
}

// EnteredApproved is true only when the listing moved into approved from a
// different status.
func (t ListingTransition) EnteredApproved() bool {
	return t.Old != models.ListingApproved && t.New == models.ListingApproved
}

// applyListingStatus is the only writer of listings.status after creation.
func applyListingStatus(ctx context.Context, tx *gorm.DB, listing *models.Listing, status models.ListingStatus) (ListingTransition, error) {
	transition := ListingTransition{Old: listing.Status, New: status}
	if transition.Old == transition.New {
		return transition, nil
	}

	if err := tx.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Update("status", status).Error; err != nil {
		return transition, fmt.Errorf("failed to update listing status: %w", err)
	}
	listing.Status = status
	return transition, nil
}

type ListingService struct {
	db        *gorm.DB
	store     ImageStore
	folder    string
	maxImages int
}

func NewListingService(db *gorm.DB, store ImageStore, folder string, maxImages int) *ListingService {
	if maxImages <= 0 {
		maxImages = MaxImagesPerListing
	}
	return &ListingService{db: db, store: store, folder: folder, maxImages: maxImages}
}

// CreateListing validates, stores the images and writes the listing, its
// images and one pending moderation entry in a single transaction. Uploaded
// images are removed again if the transaction fails.
func (s *ListingService) CreateListing(ctx context.Context, sellerID uint, input ListingInput, images []ImageFile) (*models.Listing, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	accepted, err := ValidateImages(images, s.maxImages)
	if err != nil {
		return nil, err
	}

	score := SpamScore(input.Title, input.Description)

	stored, err := s.uploadImages(ctx, accepted)
	if err != nil {
		return nil, err
	}

	listing := models.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Status:      models.ListingPending,
		Flags:       score,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, input.CategoryID); err != nil {
			return err
		}

		if err := tx.Omit("Seller", "Category", "Images").Create(&listing).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}

		if len(stored) > 0 {
			rows := make([]models.ListingImage, len(stored))
			for i, img := range stored {
				rows[i] = models.ListingImage{
					ListingID: listing.ID,
					URL:       img.URL,
					PublicID:  img.PublicID,
					FileName:  accepted[i].Name,
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to save listing images: %w", err)
			}
			listing.Images = rows
		}

		entry := models.ModerationEntry{
			ListingID: listing.ID,
			Reason:    moderationReason(score),
			Status:    models.ModerationPending,
		}
		if err := tx.Omit("Listing").Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to queue listing for moderation: %w", err)
		}

		return nil
	})
	if err != nil {
		s.discardImages(stored)
		return nil, err
	}

	zap.L().Info("Listing created",
		zap.Uint("listing_id", listing.ID),
		zap.Uint("seller_id", sellerID),
		zap.Int("spam_score", score),
		zap.Int("images", len(stored)))

	return &listing, nil
}

// UpdateListing edits content fields. Status is never touched here.
func (s *ListingService) UpdateListing(ctx context.Context, actor Actor, listingID uint, input ListingInput, newImages []ImageFile) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).Preload("Images").First(&listing, listingID).Error; err != nil {
		return nil, notFound("listing", err)
	}
	if listing.SellerID != actor.ID {
		return nil, forbidden("You don't have permission to edit this listing.")
	}

	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	remaining := s.maxImages - len(listing.Images)
	if remaining < 0 {
		remaining = 0
	}
	accepted, err := ValidateImages(newImages, remaining)
	if err != nil {
		return nil, err
	}

	stored, err := s.uploadImages(ctx, accepted)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, input.CategoryID); err != nil {
			return err
		}

		if err := tx.Model(&models.Listing{}).Where("id = ?", listing.ID).Updates(map[string]any{
			"title":       input.Title,
			"description": input.Description,
			"price":       input.Price,
			"category_id": input.CategoryID,
		}).Error; err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		for i, img := range stored {
			row := models.ListingImage{
				ListingID: listing.ID,
				URL:       img.URL,
				PublicID:  img.PublicID,
				FileName:  accepted[i].Name,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save listing images: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.discardImages(stored)
		return nil, err
	}

	return s.load(ctx, listing.ID)
}

// DeleteImage removes one image from the seller's listing.
func (s *ListingService) DeleteImage(ctx context.Context, actor Actor, listingID, imageID uint) error {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		return notFound("listing", err)
	}
	if listing.SellerID != actor.ID {
		return forbidden("You don't have permission to edit this listing.")
	}

	var image models.ListingImage
	if err := s.db.WithContext(ctx).
		Where("id = ? AND listing_id = ?", imageID, listingID).
		First(&image).Error; err != nil {
		return notFound("image", err)
	}

	if err := s.db.WithContext(ctx).Delete(&image).Error; err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	if image.PublicID != "" {
		s.discardImages([]StoredImage{{URL: image.URL, PublicID: image.PublicID}})
	}
	return nil
}

// ListApproved is the public catalogue, newest first.
func (s *ListingService) ListApproved(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultListingLimit
	}

	query := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		Where("status = ?", models.ListingApproved)

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve listings: %w", err)
	}
	return listings, nil
}

// ListBySeller returns every listing of the seller whatever its status.
func (s *ListingService) ListBySeller(ctx context.Context, sellerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	if err := s.db.WithContext(ctx).
		Preload("Images").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve listings: %w", err)
	}
	return listings, nil
}

// Get returns an approved listing to anyone, and a listing in any status to
// its seller or staff.
func (s *ListingService) Get(ctx context.Context, actor Actor, listingID uint) (*models.Listing, error) {
	listing, err := s.load(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.ListingApproved && listing.SellerID != actor.ID && !actor.IsStaff {
		return nil, &NotFoundError{Resource: "listing"}
	}
	return listing, nil
}

func (s *ListingService) load(ctx context.Context, listingID uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).
		Preload("Images").
		Preload("Category").
		Preload("Seller").
		First(&listing, listingID).Error; err != nil {
		return nil, notFound("listing", err)
	}
	return &listing, nil
}

func (s *ListingService) uploadImages(ctx context.Context, files []ImageFile) ([]StoredImage, error) {
	stored := make([]StoredImage, 0, len(files))
	for idx, file := range files {
		img, err := s.store.Upload(ctx, file, s.folder)
		if err != nil {
			s.discardImages(stored)
			if errors.Is(err, ErrImageStoreDisabled) {
				return nil, newValidationError("images", "Image uploads are not available")
			}
			return nil, fmt.Errorf("failed to upload image %d: %w", idx+1, err)
		}
		stored = append(stored, img)
	}
	return stored, nil
}

func (s *ListingService) discardImages(images []StoredImage) {
	for _, img := range images {
		if err := s.store.Delete(context.Background(), img.PublicID); err != nil {
			zap.L().Warn("Failed to remove orphaned image",
				zap.String("public_id", img.PublicID), zap.Error(err))
		}
	}
}

func checkCategory(tx *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return newValidationError("category_id", "Invalid category")
	}
	return nil
}
