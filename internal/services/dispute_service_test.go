package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"Bazaarly/internal/models"
)

const validReason = "Item arrived damaged and seller stopped replying."

func TestFileDispute_BuyerOnLatestPurchase(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	offer := env.paidOffer(t, buyer, env.approvedListing(t, seller, validTitle, "100"))

	dispute, err := env.disputes.FileDispute(context.Background(), Actor{ID: buyer.ID}, offer.ID, "  "+validReason+"  ")
	require.NoError(t, err)
	require.Equal(t, models.DisputeOpen, dispute.Status)
	require.Equal(t, validReason, dispute.Reason)

	notes := env.notifications(t, seller.ID, models.NotificationDisputeReported)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0].Message, "buyer has reported a dispute")

	_, err = env.disputes.FileDispute(context.Background(), Actor{ID: buyer.ID}, offer.ID, validReason)
	requireConflict(t, err, "already reported")
	require.Equal(t, int64(1), env.count(t, &models.Dispute{}, ""))
}

func TestFileDispute_LatestPurchaseRule(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	older := env.paidOffer(t, buyer, env.approvedListing(t, seller, "Older purchase item", "10"))
	newer := env.paidOffer(t, buyer, env.approvedListing(t, seller, "Newer purchase item", "20"))
	ctx := context.Background()

	_, err := env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, older.ID, validReason)
	requireConflict(t, err, "latest purchased item")

	_, err = env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, newer.ID, validReason)
	require.NoError(t, err)

	// The rule binds buyers only; the seller may still dispute the older sale.
	_, err = env.disputes.FileDispute(ctx, Actor{ID: seller.ID}, older.ID, validReason)
	require.NoError(t, err)

	notes := env.notifications(t, buyer.ID, models.NotificationDisputeReported)
	require.Len(t, notes, 1)
}

func TestFileDispute_Preconditions(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	stranger := env.user(t, "stranger")
	ctx := context.Background()

	unpaid := acceptedOffer(t, env, seller, buyer, "30")
	_, err := env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, unpaid.ID, validReason)
	requireConflict(t, err, "Payment not found")

	_, err = env.payments.EnsurePayment(ctx, Actor{ID: buyer.ID}, unpaid.ID)
	require.NoError(t, err)
	_, err = env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, unpaid.ID, validReason)
	requireConflict(t, err, "completed payments")

	paid := env.paidOffer(t, buyer, env.approvedListing(t, seller, "Another listed item", "40"))

	_, err = env.disputes.FileDispute(ctx, Actor{ID: stranger.ID}, paid.ID, validReason)
	requirePermission(t, err)

	_, err = env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, paid.ID, "too short, sorry")
	requireValidationError(t, err, "at least 20 characters")

	_, err = env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, 9999, validReason)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	require.Zero(t, env.count(t, &models.Dispute{}, ""))
}

func TestFileDispute_PendingOfferIsConflict(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	listing := env.approvedListing(t, seller, validTitle, "30")

	res, err := env.offers.BuyNow(context.Background(), buyer.ID, listing.ID)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.Offer{}).Where("id = ?", res.Offer.ID).Update("status", models.OfferPending).Error)

	_, err = env.disputes.FileDispute(context.Background(), Actor{ID: buyer.ID}, res.Offer.ID, validReason)
	requireConflict(t, err, "accepted transactions")
}

func TestDisputeReadsAndAdminActions(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	stranger := env.user(t, "stranger")
	offer := env.paidOffer(t, buyer, env.approvedListing(t, seller, validTitle, "100"))
	ctx := context.Background()

	byBuyer, err := env.disputes.FileDispute(ctx, Actor{ID: buyer.ID}, offer.ID, validReason)
	require.NoError(t, err)
	bySeller, err := env.disputes.FileDispute(ctx, Actor{ID: seller.ID}, offer.ID, "Buyer is demanding a refund without cause.")
	require.NoError(t, err)

	mine, err := env.disputes.ListMine(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, validTitle, mine[0].Offer.Listing.Title)

	_, err = env.disputes.Get(ctx, Actor{ID: stranger.ID}, byBuyer.ID)
	requirePermission(t, err)
	got, err := env.disputes.Get(ctx, Actor{ID: stranger.ID, IsStaff: true}, byBuyer.ID)
	require.NoError(t, err)
	require.Equal(t, "buyer", got.Reporter.Username)

	_, err = env.disputes.SetStatus(ctx, []uint{byBuyer.ID}, models.DisputeOpen)
	requireValidationError(t, err, "resolved or closed")

	n, err := env.disputes.SetStatus(ctx, []uint{byBuyer.ID}, models.DisputeResolved)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = env.disputes.SetStatus(ctx, []uint{byBuyer.ID, bySeller.ID}, models.DisputeClosed)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	resolved, err := env.disputes.ListAll(ctx, models.DisputeResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, byBuyer.ID, resolved[0].ID)

	all, err := env.disputes.ListAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}
