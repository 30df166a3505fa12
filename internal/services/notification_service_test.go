package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"Bazaarly/internal/models"
)

func seedNotifications(t *testing.T, env *testEnv, userID uint, n int) []*models.Notification {
	t.Helper()
	out := make([]*models.Notification, 0, n)
	for i := 0; i < n; i++ {
		note, err := env.notifier.Notify(context.Background(), env.db, NotifyParams{
			UserID:  userID,
			Type:    models.NotificationOfferReceived,
			Title:   fmt.Sprintf("Note %d", i),
			Message: "hello",
		})
		require.NoError(t, err)
		out = append(out, note)
	}
	return out
}

func TestNotificationList_LimitsAndUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "user")
	seedNotifications(t, env, user.ID, 12)
	ctx := context.Background()

	list, unread, err := env.notifier.List(ctx, user.ID, 0, false)
	require.NoError(t, err)
	require.Len(t, list, 10)
	require.Equal(t, int64(12), unread)
	require.Equal(t, "Note 11", list[0].Title)

	list, _, err = env.notifier.List(ctx, user.ID, 500, false)
	require.NoError(t, err)
	require.Len(t, list, 12)
}

func TestNotificationMarkRead(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "user")
	other := env.user(t, "other")
	notes := seedNotifications(t, env, user.ID, 3)
	ctx := context.Background()

	_, err := env.notifier.MarkRead(ctx, other.ID, notes[0].ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	read, err := env.notifier.MarkRead(ctx, user.ID, notes[0].ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err := env.notifier.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	onlyUnread, _, err := env.notifier.List(ctx, user.ID, 10, true)
	require.NoError(t, err)
	require.Len(t, onlyUnread, 2)

	n, err := env.notifier.MarkAllRead(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	unread, err = env.notifier.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestDeliver_EmailFailuresAreSwallowed(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "user")
	notes := seedNotifications(t, env, user.ID, 1)

	env.notifier.Deliver(context.Background(), notes...)
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "Note 0", env.mailer.sent[0].Subject)

	env.mailer.err = errors.New("smtp down")
	require.NotPanics(t, func() {
		env.notifier.Deliver(context.Background(), notes[0], nil)
	})

	quiet := NewNotificationService(env.db, nil)
	require.NotPanics(t, func() { quiet.Deliver(context.Background(), notes...) })
}
