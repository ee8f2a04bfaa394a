package repository

import (
	"context"
	"errors"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key (user email) is already taken.
	ErrDuplicate = errors.New("duplicate document")
	// ErrTxConflict is returned when a transaction gave up after repeated conflicts.
	ErrTxConflict = errors.New("transaction conflict")
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUsersByNames returns every user whose name is in names. Names are not unique.
	GetUsersByNames(ctx context.Context, names []string) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
}

// QuestionStore persists questions and their answers.
type QuestionStore interface {
	CreateQuestion(ctx context.Context, question *models.Question) (*models.Question, error)
	GetQuestionByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error)
	// ListQuestions returns questions matching filter. Limit <= 0 means no limit.
	ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error

	// CreateAnswer inserts answer under the question and increments the
	// question's answers count in one transaction. QuestionID, QuestionTitle
	// and ID are filled from the question read inside the transaction.
	CreateAnswer(ctx context.Context, questionID primitive.ObjectID, answer *models.Answer) (*models.Answer, error)
	GetAnswers(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error)
	CountAnswers(ctx context.Context, questionID primitive.ObjectID) (int, error)
	// SetAnswersCount sets the counter to count only while it still holds
	// expected. A counter that moved returns ErrTxConflict.
	SetAnswersCount(ctx context.Context, questionID primitive.ObjectID, expected, count int) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	// GetUserNotifications returns the user's notifications, newest first.
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users         UserStore
	Questions     QuestionStore
	Notifications NotificationStore
}
