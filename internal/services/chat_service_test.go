package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"Bazaarly/internal/models"
)

func TestChat_RequiresSharedOffer(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	stranger := env.user(t, "stranger")
	listing := env.approvedListing(t, seller, validTitle, "100")
	ctx := context.Background()

	_, err := env.chats.Send(ctx, buyer.ID, seller.ID, nil, "Still available?")
	requirePermission(t, err)

	offer, err := env.offers.CreateOrUpdateOffer(ctx, buyer.ID, listing.ID, decimal.NewFromInt(90))
	require.NoError(t, err)

	_, err = env.chats.Send(ctx, buyer.ID, seller.ID, nil, "Still available?")
	require.NoError(t, err)
	_, err = env.chats.Send(ctx, seller.ID, buyer.ID, &offer.ID, "Yes it is.")
	require.NoError(t, err)

	_, err = env.chats.Send(ctx, stranger.ID, seller.ID, &offer.ID, "Me too")
	requirePermission(t, err)
	_, err = env.chats.Conversation(ctx, stranger.ID, buyer.ID, nil)
	requirePermission(t, err)

	_, err = env.chats.Send(ctx, buyer.ID, buyer.ID, nil, "Talking to myself")
	requireValidationError(t, err, "yourself")

	_, err = env.chats.Send(ctx, buyer.ID, 999, nil, "Anyone there?")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	require.Equal(t, int64(2), env.count(t, &models.Message{}, ""))
}

func TestChat_SendValidatesAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	listing := env.approvedListing(t, seller, validTitle, "100")
	ctx := context.Background()

	offer, err := env.offers.CreateOrUpdateOffer(ctx, buyer.ID, listing.ID, decimal.NewFromInt(90))
	require.NoError(t, err)

	_, err = env.chats.Send(ctx, buyer.ID, seller.ID, &offer.ID, "   ")
	requireValidationError(t, err, "Message cannot be empty.")

	long := strings.Repeat("a", 150)
	msg, err := env.chats.Send(ctx, buyer.ID, seller.ID, &offer.ID, long)
	require.NoError(t, err)
	require.Equal(t, "buyer", msg.Sender.Username)
	require.False(t, msg.IsRead)

	notes := env.notifications(t, seller.ID, models.NotificationMessageReceived)
	require.Len(t, notes, 1)
	require.Equal(t, "New message from buyer", notes[0].Title)
	require.Equal(t, strings.Repeat("a", 100)+"...", notes[0].Message)
	require.Equal(t, offer.ID, *notes[0].RelatedOfferID)
	require.Equal(t, listing.ID, *notes[0].RelatedListingID)
	require.Equal(t, buyer.ID, *notes[0].RelatedUserID)
}

func TestChat_ConversationMarksReceivedMessagesRead(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "seller")
	buyer := env.user(t, "buyer")
	first := env.approvedListing(t, seller, validTitle, "100")
	second := env.approvedListing(t, seller, "Sony WH-1000XM4 headphones", "200")
	ctx := context.Background()

	offerA, err := env.offers.CreateOrUpdateOffer(ctx, buyer.ID, first.ID, decimal.NewFromInt(90))
	require.NoError(t, err)
	offerB, err := env.offers.CreateOrUpdateOffer(ctx, buyer.ID, second.ID, decimal.NewFromInt(180))
	require.NoError(t, err)

	for _, step := range []struct {
		from, to uint
		offer    *uint
		text     string
	}{
		{buyer.ID, seller.ID, &offerA.ID, "About the AirPods"},
		{seller.ID, buyer.ID, &offerA.ID, "Ask away"},
		{buyer.ID, seller.ID, &offerB.ID, "About the headphones"},
	} {
		_, err := env.chats.Send(ctx, step.from, step.to, step.offer, step.text)
		require.NoError(t, err)
	}

	thread, err := env.chats.Conversation(ctx, seller.ID, buyer.ID, &offerA.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	require.Equal(t, "About the AirPods", thread[0].Content)
	require.Equal(t, "Ask away", thread[1].Content)
	require.True(t, thread[0].IsRead)

	require.Equal(t, int64(1), env.count(t, &models.Message{}, "receiver_id = ? AND is_read = ?", seller.ID, false))
	require.Equal(t, int64(1), env.count(t, &models.Message{}, "receiver_id = ? AND is_read = ?", buyer.ID, false))

	all, err := env.chats.Conversation(ctx, seller.ID, buyer.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Zero(t, env.count(t, &models.Message{}, "receiver_id = ? AND is_read = ?", seller.ID, false))
}
