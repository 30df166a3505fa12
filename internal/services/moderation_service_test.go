package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"Bazaarly/internal/models"
)

type countingMatcher struct {
	calls []uint
}

func (m *countingMatcher) NotifyMatches(_ context.Context, listing *models.Listing) int {
	m.calls = append(m.calls, listing.ID)
	return 0
}

func createPending(t *testing.T, env *testEnv, seller models.User, title string) *models.Listing {
	t.Helper()
	listing, err := env.listings.CreateListing(context.Background(), seller.ID, ListingInput{
		Title:       title,
		Description: validDescription,
		Price:       decimal.NewFromInt(25),
	}, nil)
	require.NoError(t, err)
	return listing
}

func TestDecide_ApproveFiresMatcherOnce(t *testing.T) {
	env := newTestEnv(t)
	matcher := &countingMatcher{}
	env.moderation = NewModerationService(env.db, env.notifier, matcher)
	seller := env.user(t, "seller")
	listing := createPending(t, env, seller, validTitle)
	entry := env.entryFor(t, listing.ID)
	ctx := context.Background()

	decision, err := env.moderation.Decide(ctx, entry.ID, models.VerdictApprove)
	require.NoError(t, err)
	require.Equal(t, models.ListingApproved, decision.Listing.Status)
	require.Equal(t, models.ModerationReviewed, decision.Entry.Status)
	require.NotNil(t, decision.Entry.ReviewedAt)
	require.True(t, decision.Transition.EnteredApproved())
	require.Equal(t, []uint{listing.ID}, matcher.calls)

	_, err = env.moderation.Decide(ctx, entry.ID, models.VerdictApprove)
	requireConflict(t, err, "already been reviewed")
	require.Len(t, matcher.calls, 1)

	var stored models.Listing
	require.NoError(t, env.db.First(&stored, listing.ID).Error)
	require.Equal(t, models.ListingApproved, stored.Status)
}

func TestDecide_RejectNotifiesSeller(t *testing.T) {
	env := newTestEnv(t)
	matcher := &countingMatcher{}
	env.moderation = NewModerationService(env.db, env.notifier, matcher)
	seller := env.user(t, "seller")
	listing := createPending(t, env, seller, validTitle)
	entry := env.entryFor(t, listing.ID)

	decision, err := env.moderation.Decide(context.Background(), entry.ID, models.VerdictReject)
	require.NoError(t, err)
	require.Equal(t, models.ListingRejected, decision.Listing.Status)
	require.Empty(t, matcher.calls)

	notes := env.notifications(t, seller.ID, models.NotificationListingRejected)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0].Message, validTitle)
	require.Equal(t, listing.ID, *notes[0].RelatedListingID)
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "seller@example.com", env.mailer.sent[0].To)

	_, err = env.moderation.Decide(context.Background(), entry.ID, models.VerdictReject)
	requireConflict(t, err, "already been reviewed")
	require.Len(t, env.notifications(t, seller.ID, models.NotificationListingRejected), 1)
}

func TestDecide_ApproveTwiceDoesNotDuplicateMatchNotifications(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	watcher := env.user(t, "watcher")
	_, err := env.search.CreateSavedSearch(context.Background(), watcher.ID, "airpods", nil)
	require.NoError(t, err)

	listing := createPending(t, env, seller, validTitle)
	entry := env.entryFor(t, listing.ID)

	_, err = env.moderation.Decide(context.Background(), entry.ID, models.VerdictApprove)
	require.NoError(t, err)
	_, err = env.moderation.Decide(context.Background(), entry.ID, models.VerdictApprove)
	require.Error(t, err)

	require.Len(t, env.notifications(t, watcher.ID, models.NotificationSavedSearchMatch), 1)
}

func TestDecide_InvalidVerdictAndMissingEntry(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.moderation.Decide(context.Background(), 1, models.ModerationVerdict("maybe"))
	requireValidationError(t, err, "Verdict")

	_, err = env.moderation.Decide(context.Background(), 404, models.VerdictApprove)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListPending_OldestFirst(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	first := createPending(t, env, seller, "First listing title")
	second := createPending(t, env, seller, "Second listing title")
	decided := createPending(t, env, seller, "Third listing title")

	_, err := env.moderation.Decide(context.Background(), env.entryFor(t, decided.ID).ID, models.VerdictApprove)
	require.NoError(t, err)

	entries, err := env.moderation.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, first.ID, entries[0].ListingID)
	require.Equal(t, second.ID, entries[1].ListingID)
	require.Equal(t, "seller", entries[0].Listing.Seller.Username)
}
