package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository struct {
	store *Store
}

func (r *NotificationRepository) notifications() *firestore.CollectionRef {
	return r.store.client.Collection(notificationsCollection)
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, notif *models.Notification) error {
	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	if _, err := r.notifications().Doc(notif.ID.Hex()).Create(ctx, toNotificationDoc(notif)); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	snap, err := r.notifications().Doc(id.Hex()).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}
	n, err := fromNotificationSnap(snap)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	snaps, err := r.notifications().
		Where("userId", "==", userID.Hex()).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	out := make([]models.Notification, 0, len(snaps))
	for _, snap := range snaps {
		n, err := fromNotificationSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.notifications().Doc(id.Hex()).Update(ctx, []firestore.Update{{Path: "read", Value: true}})
	if isNotFound(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	snaps, err := r.unread(userID).Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unread notifications: %w", err)
	}

	bw := r.store.client.BulkWriter(ctx)
	for _, snap := range snaps {
		if _, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue notification update: %w", err)
		}
	}
	bw.End()
	return int64(len(snaps)), nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	snaps, err := r.unread(userID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return int64(len(snaps)), nil
}

func (r *NotificationRepository) unread(userID primitive.ObjectID) firestore.Query {
	return r.notifications().Where("userId", "==", userID.Hex()).Where("read", "==", false)
}
