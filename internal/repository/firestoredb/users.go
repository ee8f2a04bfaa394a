package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) users() *firestore.CollectionRef {
	return r.store.client.Collection(usersCollection)
}

// CreateUser checks for the email and creates the document in one
// transaction, since Firestore has no unique indexes.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	ref := r.users().Doc(user.ID.Hex())

	err := r.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(r.users().Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return repository.ErrDuplicate
		}
		return tx.Create(ref, toUserDoc(user))
	}, firestore.MaxAttempts(r.store.maxAttempts))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("user %s: %w", user.Email, repository.ErrDuplicate)
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to create user in firestore")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	snap, err := r.users().Doc(id.Hex()).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user, err := fromUserSnap(snap)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := r.users().Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if len(snaps) == 0 {
		return nil, repository.ErrNotFound
	}
	user, err := fromUserSnap(snaps[0])
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUsersByNames(ctx context.Context, names []string) ([]models.User, error) {
	users := []models.User{}
	for _, batch := range chunk(names, maxInValues) {
		snaps, err := r.users().Where("name", "in", batch).Documents(ctx).GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch users by name: %w", err)
		}
		decoded, err := decodeUsers(snaps)
		if err != nil {
			return nil, err
		}
		users = append(users, decoded...)
	}
	return users, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	snaps, err := r.users().OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return decodeUsers(snaps)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: time.Now()}}
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.Bio != nil {
		updates = append(updates, firestore.Update{Path: "bio", Value: *update.Bio})
	}
	if update.AvatarURL != nil {
		updates = append(updates, firestore.Update{Path: "avatarUrl", Value: *update.AvatarURL})
	}

	_, err := r.users().Doc(id.Hex()).Update(ctx, updates)
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

func decodeUsers(snaps []*firestore.DocumentSnapshot) ([]models.User, error) {
	users := make([]models.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := fromUserSnap(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
