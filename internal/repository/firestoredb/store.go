// Package firestoredb stores users, questions, answers and notifications in
// Cloud Firestore. Answers live in the questions/{id}/answers subcollection.
// Document ids are ObjectID hex strings so models keep one id type across
// backends.
package firestoredb

import (
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection         = "users"
	questionsCollection     = "questions"
	answersCollection       = "answers"
	notificationsCollection = "notifications"

	// Firestore caps "in" filters at 30 values.
	maxInValues = 30
)

type Store struct {
	client      *firestore.Client
	maxAttempts int
}

func NewStore(client *firestore.Client, maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Store{client: client, maxAttempts: maxAttempts}
}

func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:         &UserRepository{store: s},
		Questions:     &QuestionRepository{store: s},
		Notifications: &NotificationRepository{store: s},
	}
}

type authorDoc struct {
	ID        string `firestore:"id"`
	Name      string `firestore:"name"`
	AvatarURL string `firestore:"avatarUrl"`
}

type userDoc struct {
	Name           string    `firestore:"name"`
	Email          string    `firestore:"email"`
	AvatarURL      string    `firestore:"avatarUrl"`
	Bio            string    `firestore:"bio"`
	HashedPassword string    `firestore:"hashedPassword,omitempty"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

type questionDoc struct {
	Title        string    `firestore:"title"`
	Body         string    `firestore:"body"`
	Author       authorDoc `firestore:"author"`
	Tags         []string  `firestore:"tags"`
	CreatedAt    time.Time `firestore:"createdAt"`
	Votes        int       `firestore:"votes"`
	AnswersCount int       `firestore:"answersCount"`
	Views        int       `firestore:"views"`
}

type answerDoc struct {
	Body          string    `firestore:"body"`
	Author        authorDoc `firestore:"author"`
	CreatedAt     time.Time `firestore:"createdAt"`
	Votes         int       `firestore:"votes"`
	IsAccepted    bool      `firestore:"isAccepted"`
	QuestionID    string    `firestore:"questionId"`
	QuestionTitle string    `firestore:"questionTitle"`
}

type notificationDoc struct {
	UserID    string    `firestore:"userId"`
	Message   string    `firestore:"message"`
	Link      string    `firestore:"link"`
	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func toAuthorDoc(a models.Author) authorDoc {
	return authorDoc{ID: a.ID.Hex(), Name: a.Name, AvatarURL: a.AvatarURL}
}

func fromAuthorDoc(d authorDoc) models.Author {
	id, _ := primitive.ObjectIDFromHex(d.ID)
	return models.Author{ID: id, Name: d.Name, AvatarURL: d.AvatarURL}
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		Name:           u.Name,
		Email:          u.Email,
		AvatarURL:      u.AvatarURL,
		Bio:            u.Bio,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func fromUserSnap(snap *firestore.DocumentSnapshot) (models.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return models.User{}, fmt.Errorf("failed to decode user %s: %w", snap.Ref.ID, err)
	}
	id, err := docID(snap.Ref.ID)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:             id,
		Name:           d.Name,
		Email:          d.Email,
		AvatarURL:      d.AvatarURL,
		Bio:            d.Bio,
		HashedPassword: d.HashedPassword,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func toQuestionDoc(q *models.Question) questionDoc {
	return questionDoc{
		Title:        q.Title,
		Body:         q.Body,
		Author:       toAuthorDoc(q.Author),
		Tags:         q.Tags,
		CreatedAt:    q.CreatedAt,
		Votes:        q.Votes,
		AnswersCount: q.AnswersCount,
		Views:        q.Views,
	}
}

func fromQuestionSnap(snap *firestore.DocumentSnapshot) (models.Question, error) {
	var d questionDoc
	if err := snap.DataTo(&d); err != nil {
		return models.Question{}, fmt.Errorf("failed to decode question %s: %w", snap.Ref.ID, err)
	}
	id, err := docID(snap.Ref.ID)
	if err != nil {
		return models.Question{}, err
	}
	return models.Question{
		ID:           id,
		Title:        d.Title,
		Body:         d.Body,
		Author:       fromAuthorDoc(d.Author),
		Tags:         d.Tags,
		CreatedAt:    d.CreatedAt,
		Votes:        d.Votes,
		AnswersCount: d.AnswersCount,
		Views:        d.Views,
	}, nil
}

func toAnswerDoc(a *models.Answer) answerDoc {
	return answerDoc{
		Body:          a.Body,
		Author:        toAuthorDoc(a.Author),
		CreatedAt:     a.CreatedAt,
		Votes:         a.Votes,
		IsAccepted:    a.IsAccepted,
		QuestionID:    a.QuestionID.Hex(),
		QuestionTitle: a.QuestionTitle,
	}
}

func fromAnswerSnap(snap *firestore.DocumentSnapshot) (models.Answer, error) {
	var d answerDoc
	if err := snap.DataTo(&d); err != nil {
		return models.Answer{}, fmt.Errorf("failed to decode answer %s: %w", snap.Ref.ID, err)
	}
	id, err := docID(snap.Ref.ID)
	if err != nil {
		return models.Answer{}, err
	}
	qid, _ := primitive.ObjectIDFromHex(d.QuestionID)
	return models.Answer{
		ID:            id,
		Body:          d.Body,
		Author:        fromAuthorDoc(d.Author),
		CreatedAt:     d.CreatedAt,
		Votes:         d.Votes,
		IsAccepted:    d.IsAccepted,
		QuestionID:    qid,
		QuestionTitle: d.QuestionTitle,
	}, nil
}

func toNotificationDoc(n *models.Notification) notificationDoc {
	return notificationDoc{
		UserID:    n.UserID.Hex(),
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func fromNotificationSnap(snap *firestore.DocumentSnapshot) (models.Notification, error) {
	var d notificationDoc
	if err := snap.DataTo(&d); err != nil {
		return models.Notification{}, fmt.Errorf("failed to decode notification %s: %w", snap.Ref.ID, err)
	}
	id, err := docID(snap.Ref.ID)
	if err != nil {
		return models.Notification{}, err
	}
	uid, _ := primitive.ObjectIDFromHex(d.UserID)
	return models.Notification{
		ID:        id,
		UserID:    uid,
		Message:   d.Message,
		Link:      d.Link,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}, nil
}

func docID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("document id %q is not an ObjectID: %w", id, err)
	}
	return oid, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// chunk splits values into slices small enough for an "in" filter.
func chunk(values []string, size int) [][]string {
	var out [][]string
	for len(values) > size {
		out = append(out, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		out = append(out, values)
	}
	return out
}
