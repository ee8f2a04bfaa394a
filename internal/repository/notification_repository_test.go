package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNotificationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create fills id and timestamp", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		notif := &models.Notification{UserID: primitive.NewObjectID(), Message: "hi", Link: "/questions/1"}
		require.NoError(mt, repo.CreateNotification(context.Background(), notif))
		assert.False(mt, notif.ID.IsZero())
		assert.False(mt, notif.CreatedAt.IsZero())
	})

	mt.Run("list for user", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		userID := primitive.NewObjectID()
		newer := time.Now().UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notifications", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: userID}, {Key: "message", Value: "second"}, {Key: "created_at", Value: newer}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: userID}, {Key: "message", Value: "first"}, {Key: "read", Value: true}, {Key: "created_at", Value: newer.Add(-time.Hour)}},
		))

		notifs, err := repo.GetUserNotifications(context.Background(), userID)
		require.NoError(mt, err)
		require.Len(mt, notifs, 2)
		assert.Equal(mt, "second", notifs[0].Message)
		assert.True(mt, notifs[1].Read)
	})

	mt.Run("mark as read twice is fine", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}},
			bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 0}},
		)

		assert.NoError(mt, repo.MarkAsRead(context.Background(), id))
		assert.NoError(mt, repo.MarkAsRead(context.Background(), id))
	})

	mt.Run("mark as read unknown id", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.MarkAsRead(context.Background(), primitive.NewObjectID())
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("count unread", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notifications", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := repo.CountUnread(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}
