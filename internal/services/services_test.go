package services

import (
	"context"
	"testing"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store         repository.Store
	questions     *QuestionService
	notifications *NotificationService
}

func newFixture(t *testing.T, opts ...memory.Option) *fixture {
	t.Helper()
	repos := memory.New(opts...).Repositories()
	notifications := NewNotificationService(repos.Notifications, repos.Users)
	return &fixture{
		store:         repos,
		questions:     NewQuestionService(repos.Questions, repos.Users, notifications),
		notifications: notifications,
	}
}

// addUser stores a user directly, skipping password hashing.
func (f *fixture) addUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := f.store.Users.CreateUser(context.Background(), &models.User{
		Name:      name,
		Email:     email,
		AvatarURL: DefaultAvatarURL(name),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) inbox(t *testing.T, u *models.User) []models.Notification {
	t.Helper()
	list, err := f.store.Notifications.GetUserNotifications(context.Background(), u.ID)
	require.NoError(t, err)
	return list
}
