package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"Bazaarly/internal/models"
)

func TestRate(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	stranger := env.user(t, "stranger")
	ctx := context.Background()

	unpaid := acceptedOffer(t, env, seller, buyer, "20")
	_, err := env.ratings.Rate(ctx, Actor{ID: buyer.ID}, unpaid.ID, 5, "")
	requireConflict(t, err, "completed transactions")

	paid := env.paidOffer(t, buyer, env.approvedListing(t, seller, "Second item for sale", "30"))

	_, err = env.ratings.Rate(ctx, Actor{ID: stranger.ID}, paid.ID, 5, "")
	requirePermission(t, err)

	_, err = env.ratings.Rate(ctx, Actor{ID: buyer.ID}, paid.ID, 6, "")
	requireValidationError(t, err, "between 1 and 5")

	first, err := env.ratings.Rate(ctx, Actor{ID: buyer.ID}, paid.ID, 4, "Quick and friendly")
	require.NoError(t, err)
	require.Equal(t, seller.ID, first.RatedUserID)

	updated, err := env.ratings.Rate(ctx, Actor{ID: buyer.ID}, paid.ID, 2, "  Item was scratched ")
	require.NoError(t, err)
	require.Equal(t, first.ID, updated.ID)
	require.Equal(t, 2, updated.Score)
	require.Equal(t, "Item was scratched", updated.Comment)
	require.Equal(t, int64(1), env.count(t, &models.Rating{}, ""))

	back, err := env.ratings.Rate(ctx, Actor{ID: seller.ID}, paid.ID, 5, "Paid instantly")
	require.NoError(t, err)
	require.Equal(t, buyer.ID, back.RatedUserID)

	summary, err := env.ratings.Received(ctx, seller.ID)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Count)
	require.InDelta(t, 2.0, summary.Average, 0.001)
	require.Equal(t, "buyer", summary.Ratings[0].Rater.Username)

	empty, err := env.ratings.Received(ctx, stranger.ID)
	require.NoError(t, err)
	require.Zero(t, empty.Count)
	require.Zero(t, empty.Average)
}
