package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifications_NewestFirstAndReadFlags(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now()

	older := &models.Notification{UserID: alice, Message: "older", CreatedAt: base.Add(-time.Hour)}
	newer := &models.Notification{UserID: alice, Message: "newer", CreatedAt: base}
	require.NoError(t, s.CreateNotification(ctx, older))
	require.NoError(t, s.CreateNotification(ctx, newer))
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: bob, Message: "bob's"}))

	list, err := s.GetUserNotifications(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Message)
	assert.Equal(t, "older", list[1].Message)

	unread, _ := s.CountUnread(ctx, alice)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, s.MarkAsRead(ctx, older.ID))
	require.NoError(t, s.MarkAsRead(ctx, older.ID))
	got, _ := s.GetNotificationByID(ctx, older.ID)
	assert.True(t, got.Read)

	changed, err := s.MarkAllAsRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	unread, _ = s.CountUnread(ctx, alice)
	assert.Zero(t, unread)
	bobUnread, _ := s.CountUnread(ctx, bob)
	assert.Equal(t, int64(1), bobUnread)

	assert.True(t, errors.Is(s.MarkAsRead(ctx, primitive.NewObjectID()), repository.ErrNotFound))
}
