package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type failingQuestions struct {
	repository.QuestionStore
	err error
}

func (f failingQuestions) CreateQuestion(context.Context, *models.Question) (*models.Question, error) {
	return nil, f.err
}

func (f failingQuestions) CreateAnswer(context.Context, primitive.ObjectID, *models.Answer) (*models.Answer, error) {
	return nil, f.err
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) CreateNotification(context.Context, primitive.ObjectID, string, string) error {
	n.calls++
	return errors.New("notifications collection unavailable")
}

func TestCreateQuestion_NotifiesMentionedUser(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	id, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Library hours?",
		Body:   "Thanks @alice for the help",
		Tags:   "campus",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)

	inbox := f.inbox(t, alice)
	require.Len(t, inbox, 1)
	assert.Equal(t, alice.ID, inbox[0].UserID)
	assert.Equal(t, "bob mentioned you in a question: Library hours?", inbox[0].Message)
	assert.Equal(t, "/questions/"+id.Hex(), inbox[0].Link)
	assert.False(t, inbox[0].Read)

	assert.Empty(t, f.inbox(t, bob))
}

func TestCreateQuestion_StoresNormalizedFields(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "bob@campus.edu")

	id, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "  Where to eat?  ",
		Body:   "Any cheap lunch near the lab?",
		Tags:   "science  daily-life science",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)

	q, err := f.store.Questions.GetQuestionByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Where to eat?", q.Title)
	assert.Equal(t, []string{"science", "daily-life"}, q.Tags)
	assert.Equal(t, bob.AsAuthor(), q.Author)
	assert.Zero(t, q.Votes)
	assert.Zero(t, q.AnswersCount)
	assert.Zero(t, q.Views)
	assert.False(t, q.CreatedAt.IsZero())
}

func TestCreateQuestion_SelfMentionIsNotNotified(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "bob@campus.edu")

	_, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Reminder",
		Body:   "@bob @bob note to self",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)
	assert.Empty(t, f.inbox(t, bob))
}

func TestCreateQuestion_OneNotificationPerUser(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	carol := f.addUser(t, "carol", "carol@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	_, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:    "Study group",
		Body:     "@alice @alice are you joining? @nobody too",
		Author:   bob.AsAuthor(),
		Mentions: []string{"alice", "carol"},
	})
	require.NoError(t, err)

	assert.Len(t, f.inbox(t, alice), 1)
	assert.Len(t, f.inbox(t, carol), 1)
}

func TestCreateQuestion_SharedNameNotifiesEveryMatch(t *testing.T) {
	f := newFixture(t)
	first := f.addUser(t, "kim", "kim1@campus.edu")
	second := f.addUser(t, "kim", "kim2@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	_, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Lost card",
		Body:   "@kim did you find a student card?",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)

	assert.Len(t, f.inbox(t, first), 1)
	assert.Len(t, f.inbox(t, second), 1)
}

func TestCreateQuestion_Validation(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "bob@campus.edu")

	_, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: " ", Body: "body", Author: bob.AsAuthor()})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "title", Body: "", Author: bob.AsAuthor()})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	list, err := f.store.Questions.ListQuestions(context.Background(), models.QuestionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateQuestion_StoreFailureHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	cause := errors.New("write concern timeout")
	svc := NewQuestionService(failingQuestions{QuestionStore: f.store.Questions, err: cause}, f.store.Users, f.notifications)

	id, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Hello",
		Body:   "hi @alice",
		Author: bob.AsAuthor(),
	})
	require.Error(t, err)
	assert.True(t, id.IsZero())
	assert.Equal(t, "failed to create question", err.Error())
	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, f.inbox(t, alice))
}

func TestCreateQuestion_NotificationFailureKeepsQuestion(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	notifier := &failingNotifier{}
	svc := NewQuestionService(f.store.Questions, f.store.Users, notifier)

	id, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Hello",
		Body:   "hi @alice",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)

	_, err = f.store.Questions.GetQuestionByID(context.Background(), id)
	assert.NoError(t, err)
}

func TestCreateAnswer(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	qid, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{
		Title:  "Best cafe?",
		Body:   "Looking for a quiet place",
		Author: bob.AsAuthor(),
	})
	require.NoError(t, err)

	answer, err := f.questions.CreateAnswer(context.Background(), qid, "  The one by the library  ", alice.AsAuthor())
	require.NoError(t, err)
	assert.False(t, answer.ID.IsZero())
	assert.Equal(t, "The one by the library", answer.Body)
	assert.Equal(t, qid, answer.QuestionID)
	assert.Equal(t, "Best cafe?", answer.QuestionTitle)
	assert.Zero(t, answer.Votes)
	assert.False(t, answer.IsAccepted)

	q, err := f.store.Questions.GetQuestionByID(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, 1, q.AnswersCount)

	inbox := f.inbox(t, bob)
	require.Len(t, inbox, 1)
	assert.Equal(t, "alice answered your question: Best cafe?", inbox[0].Message)
	assert.Equal(t, QuestionLink(qid), inbox[0].Link)
}

func TestCreateAnswer_OwnQuestionIsNotNotified(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "bob@campus.edu")

	qid, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "t", Body: "b", Author: bob.AsAuthor()})
	require.NoError(t, err)

	_, err = f.questions.CreateAnswer(context.Background(), qid, "answering myself", bob.AsAuthor())
	require.NoError(t, err)
	assert.Empty(t, f.inbox(t, bob))
}

func TestCreateAnswer_MissingQuestion(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	missing := primitive.NewObjectID()

	_, err := f.questions.CreateAnswer(context.Background(), missing, "hello", alice.AsAuthor())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "question not found", err.Error())

	n, err := f.store.Questions.CountAnswers(context.Background(), missing)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateAnswer_EmptyBody(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")

	_, err := f.questions.CreateAnswer(context.Background(), primitive.NewObjectID(), "   ", alice.AsAuthor())
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreateAnswer_TransactionFailureIsGeneric(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")

	cause := fmt.Errorf("gave up: %w", repository.ErrTxConflict)
	svc := NewQuestionService(failingQuestions{QuestionStore: f.store.Questions, err: cause}, f.store.Users, f.notifications)

	_, err := svc.CreateAnswer(context.Background(), primitive.NewObjectID(), "hello", alice.AsAuthor())
	require.Error(t, err)
	assert.Equal(t, "failed to create answer", err.Error())
	assert.ErrorIs(t, err, repository.ErrTxConflict)
}

func TestCreateAnswer_ConcurrentSubmissionsKeepCount(t *testing.T) {
	for _, n := range []int{1, 5, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			f := newFixture(t, memory.WithMaxAttempts(200))
			bob := f.addUser(t, "bob", "bob@campus.edu")
			qid, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "t", Body: "b", Author: bob.AsAuthor()})
			require.NoError(t, err)

			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					author := models.Author{ID: primitive.NewObjectID(), Name: fmt.Sprintf("user%d", i)}
					_, err := f.questions.CreateAnswer(context.Background(), qid, fmt.Sprintf("answer %d", i), author)
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			q, err := f.store.Questions.GetQuestionByID(context.Background(), qid)
			require.NoError(t, err)
			count, err := f.store.Questions.CountAnswers(context.Background(), qid)
			require.NoError(t, err)
			assert.Equal(t, n, count)
			assert.Equal(t, n, q.AnswersCount)
		})
	}
}

func TestGetQuestion_CountsViewAndReturnsAnswers(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@campus.edu")
	bob := f.addUser(t, "bob", "bob@campus.edu")

	qid, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "t", Body: "b", Author: bob.AsAuthor()})
	require.NoError(t, err)
	_, err = f.questions.CreateAnswer(context.Background(), qid, "first", alice.AsAuthor())
	require.NoError(t, err)

	detail, err := f.questions.GetQuestion(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Views)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, "first", detail.Answers[0].Body)

	detail, err = f.questions.GetQuestion(context.Background(), qid)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Views)

	_, err = f.questions.GetQuestion(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListQuestions(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "bob@campus.edu")

	answered, err := f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "answered", Body: "b", Author: bob.AsAuthor()})
	require.NoError(t, err)
	_, err = f.questions.CreateQuestion(context.Background(), CreateQuestionInput{Title: "open", Body: "b", Author: bob.AsAuthor()})
	require.NoError(t, err)
	_, err = f.questions.CreateAnswer(context.Background(), answered, "yes", bob.AsAuthor())
	require.NoError(t, err)

	all, err := f.questions.ListQuestions(context.Background(), models.QuestionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := f.questions.ListQuestions(context.Background(), models.QuestionFilter{Sort: models.SortUnanswered})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0].Title)

	_, err = f.questions.ListQuestions(context.Background(), models.QuestionFilter{Sort: "random"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
