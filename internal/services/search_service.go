package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

const minQueryTokenLength = 3

type SearchService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewSearchService(db *gorm.DB, notifier Notifier) *SearchService {
	return &SearchService{db: db, notifier: notifier}
}

// CreateSavedSearch stores a query with free-form filters. Filter values are
// kept as given; malformed ones are ignored at match time.
func (s *SearchService) CreateSavedSearch(ctx context.Context, userID uint, query string, filters map[string]any) (*models.SavedSearch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newValidationError("query", "Search query is required")
	}
	if utf8.RuneCountInString(query) > 255 {
		return nil, newValidationError("query", "Search query must be at most 255 characters")
	}
	if filters == nil {
		filters = map[string]any{}
	}

	search := models.SavedSearch{
		UserID:  userID,
		Query:   query,
		Filters: datatypes.JSONMap(filters),
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&search).Error; err != nil {
		return nil, fmt.Errorf("failed to save search: %w", err)
	}
	return &search, nil
}

func (s *SearchService) ListSavedSearches(ctx context.Context, userID uint) ([]models.SavedSearch, error) {
	var searches []models.SavedSearch
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&searches).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve saved searches: %w", err)
	}
	return searches, nil
}

func (s *SearchService) DeleteSavedSearch(ctx context.Context, userID, searchID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", searchID, userID).
		Delete(&models.SavedSearch{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Resource: "saved search"}
	}
	return nil
}

// NotifyMatches notifies the owner of every matching saved search except
// the seller's own. A failure on one search is logged and skipped. It returns
// the number of notifications written.
func (s *SearchService) NotifyMatches(ctx context.Context, listing *models.Listing) int {
	var searches []models.SavedSearch
	if err := s.db.WithContext(ctx).
		Where("user_id <> ?", listing.SellerID).
		Order("id ASC").
		Find(&searches).Error; err != nil {
		zap.L().Error("Failed to load saved searches", zap.Uint("listing_id", listing.ID), zap.Error(err))
		return 0
	}

	notified := 0
	for i := range searches {
		if s.notifyOne(ctx, listing, &searches[i]) {
			notified++
		}
	}

	zap.L().Info("Saved search matches processed",
		zap.Uint("listing_id", listing.ID),
		zap.Int("searches", len(searches)),
		zap.Int("notified", notified))
	return notified
}

func (s *SearchService) notifyOne(ctx context.Context, listing *models.Listing, search *models.SavedSearch) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Saved search match panicked",
				zap.Uint("saved_search_id", search.ID),
				zap.Uint("listing_id", listing.ID),
				zap.Any("panic", r))
			ok = false
		}
	}()

	if !MatchesSavedSearch(listing, search) {
		return false
	}

	n, err := s.notifier.Notify(ctx, s.db, NotifyParams{
		UserID:           search.UserID,
		Type:             models.NotificationSavedSearchMatch,
		Title:            "New Listing Matches Your Saved Search",
		Message:          fmt.Sprintf("A new listing '%s' matches your saved search '%s'", listing.Title, search.Query),
		RelatedListingID: uintPtr(listing.ID),
	})
	if err != nil {
		zap.L().Warn("Failed to notify saved search match",
			zap.Uint("saved_search_id", search.ID),
			zap.Uint("listing_id", listing.ID),
			zap.Error(err))
		return false
	}

	s.notifier.Deliver(ctx, n)
	return true
}

// MatchesSavedSearch applies the keyword, category and price filters of a
// saved search to a listing. Any query token longer than two characters
// appearing in the title or description is a keyword hit.
func MatchesSavedSearch(listing *models.Listing, search *models.SavedSearch) bool {
	query := strings.ToLower(strings.TrimSpace(search.Query))
	if query != "" {
		text := strings.ToLower(listing.Title + " " + listing.Description)
		hit := false
		for _, token := range strings.Fields(query) {
			if utf8.RuneCountInString(token) >= minQueryTokenLength && strings.Contains(text, token) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}

	filters := map[string]any(search.Filters)

	if categoryID, ok := filterUint(filters, "category_id"); ok && categoryID != 0 {
		if listing.CategoryID == nil || *listing.CategoryID != categoryID {
			return false
		}
	}

	if minPrice, ok := filterDecimal(filters, "min_price"); ok && listing.Price.LessThan(minPrice) {
		return false
	}
	if maxPrice, ok := filterDecimal(filters, "max_price"); ok && listing.Price.GreaterThan(maxPrice) {
		return false
	}

	return true
}

func filterDecimal(filters map[string]any, key string) (decimal.Decimal, bool) {
	switch v := filters[key].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func filterUint(filters map[string]any, key string) (uint, bool) {
	switch v := filters[key].(type) {
	case float64:
		if v < 0 || v != float64(uint(v)) {
			return 0, false
		}
		return uint(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case json.Number:
		n, err := strconv.ParseUint(v.String(), 10, 64)
		return uint(n), err == nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		return uint(n), err == nil
	default:
		return 0, false
	}
}
