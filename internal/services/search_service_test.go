package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Bazaarly/internal/models"
)

func TestMatchesSavedSearch(t *testing.T) {
	cat := uint(3)
	listing := &models.Listing{
		Title:       "Trek mountain bike",
		Description: "Aluminium frame, hydraulic brakes, ridden twice.",
		Price:       decimal.NewFromInt(450),
		CategoryID:  &cat,
	}

	tests := []struct {
		name    string
		query   string
		filters map[string]any
		want    bool
	}{
		{"any token hits", "road bike", nil, true},
		{"case insensitive", "TREK", nil, true},
		{"description hit", "hydraulic", nil, true},
		{"no token hits", "guitar amplifier", nil, false},
		{"short tokens ignored", "a of", nil, false},
		{"empty query", "", nil, true},
		{"category match", "bike", map[string]any{"category_id": float64(3)}, true},
		{"category mismatch", "bike", map[string]any{"category_id": float64(4)}, false},
		{"category as string", "bike", map[string]any{"category_id": "3"}, true},
		{"category zero ignored", "bike", map[string]any{"category_id": float64(0)}, true},
		{"min price holds", "bike", map[string]any{"min_price": float64(450)}, true},
		{"min price fails", "bike", map[string]any{"min_price": "450.01"}, false},
		{"max price holds", "bike", map[string]any{"max_price": json.Number("500")}, true},
		{"max price fails", "bike", map[string]any{"max_price": float64(449.99)}, false},
		{"malformed bounds ignored", "bike", map[string]any{"min_price": "cheap", "max_price": []any{1}, "category_id": "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &models.SavedSearch{Query: tt.query, Filters: datatypes.JSONMap(tt.filters)}
			assert.Equal(t, tt.want, MatchesSavedSearch(listing, search))
		})
	}
}

func TestMatchesSavedSearch_NoCategoryOnListing(t *testing.T) {
	listing := &models.Listing{Title: "Trek mountain bike", Price: decimal.NewFromInt(1)}
	search := &models.SavedSearch{Query: "bike", Filters: datatypes.JSONMap{"category_id": float64(2)}}
	assert.False(t, MatchesSavedSearch(listing, search))
}

func TestSavedSearchCRUD(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "watcher")
	other := env.user(t, "other")
	ctx := context.Background()

	_, err := env.search.CreateSavedSearch(ctx, user.ID, "   ", nil)
	requireValidationError(t, err, "query is required")

	search, err := env.search.CreateSavedSearch(ctx, user.ID, " airpods ", map[string]any{"max_price": 200})
	require.NoError(t, err)
	require.Equal(t, "airpods", search.Query)

	list, err := env.search.ListSavedSearches(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.EqualValues(t, 200, list[0].Filters["max_price"])

	var nf *NotFoundError
	require.ErrorAs(t, env.search.DeleteSavedSearch(ctx, other.ID, search.ID), &nf)
	require.NoError(t, env.search.DeleteSavedSearch(ctx, user.ID, search.ID))
	require.Zero(t, env.count(t, &models.SavedSearch{}, ""))
}

func TestNotifyMatches_ExcludesSellerAndFilters(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	cheap := env.user(t, "cheap")
	fan := env.user(t, "fan")
	ctx := context.Background()

	_, err := env.search.CreateSavedSearch(ctx, seller.ID, "airpods", nil)
	require.NoError(t, err)
	_, err = env.search.CreateSavedSearch(ctx, cheap.ID, "airpods", map[string]any{"max_price": 50})
	require.NoError(t, err)
	_, err = env.search.CreateSavedSearch(ctx, fan.ID, "apple headphones", map[string]any{"min_price": "oops"})
	require.NoError(t, err)

	env.approvedListing(t, seller, validTitle, "199.99")

	require.Empty(t, env.notifications(t, seller.ID, models.NotificationSavedSearchMatch))
	require.Empty(t, env.notifications(t, cheap.ID, models.NotificationSavedSearchMatch))
	notes := env.notifications(t, fan.ID, models.NotificationSavedSearchMatch)
	require.Len(t, notes, 1)
	require.Equal(t, "New Listing Matches Your Saved Search", notes[0].Title)
}

type flakyNotifier struct {
	*NotificationService
	failFor uint
}

func (f *flakyNotifier) Notify(ctx context.Context, db *gorm.DB, p NotifyParams) (*models.Notification, error) {
	if p.UserID == f.failFor {
		return nil, errors.New("notification store down")
	}
	return f.NotificationService.Notify(ctx, db, p)
}

type panickyNotifier struct {
	*NotificationService
	panicFor uint
}

func (p *panickyNotifier) Notify(ctx context.Context, db *gorm.DB, params NotifyParams) (*models.Notification, error) {
	if params.UserID == p.panicFor {
		panic("boom")
	}
	return p.NotificationService.Notify(ctx, db, params)
}

func TestNotifyMatches_IsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	broken := env.user(t, "broken")
	exploding := env.user(t, "exploding")
	healthy := env.user(t, "healthy")
	ctx := context.Background()

	for _, u := range []models.User{broken, exploding, healthy} {
		_, err := env.search.CreateSavedSearch(ctx, u.ID, "airpods", nil)
		require.NoError(t, err)
	}

	listing := &models.Listing{ID: 77, SellerID: seller.ID, Title: validTitle, Description: validDescription, Price: decimal.NewFromInt(10)}

	flaky := NewSearchService(env.db, &flakyNotifier{NotificationService: env.notifier, failFor: broken.ID})
	require.Equal(t, 2, flaky.NotifyMatches(ctx, listing))

	panicky := NewSearchService(env.db, &panickyNotifier{NotificationService: env.notifier, panicFor: exploding.ID})
	require.Equal(t, 2, panicky.NotifyMatches(ctx, listing))

	require.Len(t, env.notifications(t, healthy.ID, models.NotificationSavedSearchMatch), 2)
	require.Len(t, env.notifications(t, exploding.ID, models.NotificationSavedSearchMatch), 1)
	require.Len(t, env.notifications(t, broken.ID, models.NotificationSavedSearchMatch), 1)
}

func TestApprovalSurvivesMatcherFailure(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	watcher := env.user(t, "watcher")
	_, err := env.search.CreateSavedSearch(context.Background(), watcher.ID, "airpods", nil)
	require.NoError(t, err)

	matcher := NewSearchService(env.db, &panickyNotifier{NotificationService: env.notifier, panicFor: watcher.ID})
	env.moderation = NewModerationService(env.db, env.notifier, matcher)

	listing := env.approvedListing(t, seller, validTitle, "10")
	require.Equal(t, models.ListingApproved, listing.Status)
	require.Empty(t, env.notifications(t, watcher.ID, models.NotificationSavedSearchMatch))
}
