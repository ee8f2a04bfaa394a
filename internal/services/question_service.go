package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Notifier records a notification for a user.
type Notifier interface {
	CreateNotification(ctx context.Context, userID primitive.ObjectID, message, link string) error
}

// CreateQuestionInput is what an author submits when asking. A nil Mentions
// means the names are taken from the body only.
type CreateQuestionInput struct {
	Title    string
	Body     string
	Tags     string
	Author   models.Author
	Mentions []string
}

type QuestionService struct {
	questions repository.QuestionStore
	users     repository.UserStore
	notifier  Notifier
	now       func() time.Time
}

func NewQuestionService(questions repository.QuestionStore, users repository.UserStore, notifier Notifier) *QuestionService {
	return &QuestionService{questions: questions, users: users, notifier: notifier, now: time.Now}
}

func QuestionLink(id primitive.ObjectID) string {
	return "/questions/" + id.Hex()
}

// CreateQuestion stores the question and then notifies every mentioned user
// other than the author. Mention delivery happens after the write commits and
// its failures are only logged.
func (s *QuestionService) CreateQuestion(ctx context.Context, in CreateQuestionInput) (primitive.ObjectID, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" {
		return primitive.NilObjectID, apperror.Validation("title is required")
	}
	if body == "" {
		return primitive.NilObjectID, apperror.Validation("body is required")
	}

	question := &models.Question{
		Title:        title,
		Body:         body,
		Author:       in.Author,
		Tags:         ParseTags(in.Tags),
		CreatedAt:    s.now(),
		Votes:        0,
		AnswersCount: 0,
		Views:        0,
	}
	created, err := s.questions.CreateQuestion(ctx, question)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", in.Author.ID.Hex()).Error("Failed to create question")
		return primitive.NilObjectID, apperror.Internal("failed to create question", err)
	}

	log := logger.Log.WithField("question_id", created.ID.Hex())
	log.Info("Question created")

	mentions := ExtractMentions(in.Body)
	if in.Mentions != nil {
		mentions = MergeNames(in.Mentions, mentions)
	}
	s.notifyMentions(ctx, log, created, mentions)

	return created.ID, nil
}

func (s *QuestionService) notifyMentions(ctx context.Context, log *logrus.Entry, q *models.Question, names []string) {
	if len(names) == 0 {
		return
	}

	users, err := s.users.GetUsersByNames(ctx, names)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve mentioned users")
		return
	}

	perName := make(map[string]int, len(names))
	notified := make(map[primitive.ObjectID]bool, len(users))
	message := fmt.Sprintf("%s mentioned you in a question: %s", q.Author.Name, q.Title)
	link := QuestionLink(q.ID)

	for _, u := range users {
		perName[u.Name]++
		if u.ID == q.Author.ID || notified[u.ID] {
			continue
		}
		notified[u.ID] = true
		if err := s.notifier.CreateNotification(ctx, u.ID, message, link); err != nil {
			log.WithError(err).WithField("user_id", u.ID.Hex()).Warn("Failed to notify mentioned user")
		}
	}

	for name, n := range perName {
		if n > 1 {
			log.WithField("mention", name).Warnf("Mention matched %d users", n)
		}
	}
}

// CreateAnswer adds an answer and bumps the question's answer count in one
// transaction, then tells the question's author.
func (s *QuestionService) CreateAnswer(ctx context.Context, questionID primitive.ObjectID, body string, author models.Author) (*models.Answer, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.Validation("body is required")
	}

	answer := &models.Answer{
		Body:       body,
		Author:     author,
		CreatedAt:  s.now(),
		Votes:      0,
		IsAccepted: false,
	}
	created, err := s.questions.CreateAnswer(ctx, questionID, answer)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("question")
	}
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", questionID.Hex()).Error("Failed to create answer")
		return nil, apperror.Internal("failed to create answer", err)
	}

	log := logger.Log.WithField("question_id", questionID.Hex())
	log.Info("Answer created")
	s.notifyQuestionAuthor(ctx, log, created)

	return created, nil
}

func (s *QuestionService) notifyQuestionAuthor(ctx context.Context, log *logrus.Entry, a *models.Answer) {
	q, err := s.questions.GetQuestionByID(ctx, a.QuestionID)
	if err != nil {
		log.WithError(err).Warn("Failed to load question for answer notification")
		return
	}
	if q.Author.ID == a.Author.ID || q.Author.ID.IsZero() {
		return
	}
	message := fmt.Sprintf("%s answered your question: %s", a.Author.Name, q.Title)
	if err := s.notifier.CreateNotification(ctx, q.Author.ID, message, QuestionLink(q.ID)); err != nil {
		log.WithError(err).Warn("Failed to notify question author")
	}
}

// GetQuestion returns the question with its answers and counts the view.
func (s *QuestionService) GetQuestion(ctx context.Context, id primitive.ObjectID) (*models.QuestionDetail, error) {
	q, err := s.questions.GetQuestionByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("question")
	}
	if err != nil {
		return nil, apperror.Internal("failed to get question", err)
	}

	if err := s.questions.IncrementViews(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("question_id", id.Hex()).Warn("Failed to count view")
	} else {
		q.Views++
	}

	answers, err := s.questions.GetAnswers(ctx, id)
	if err != nil {
		return nil, apperror.Internal("failed to get answers", err)
	}
	return &models.QuestionDetail{Question: *q, Answers: answers}, nil
}

func (s *QuestionService) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	switch filter.Sort {
	case "":
		filter.Sort = models.SortNewest
	case models.SortNewest, models.SortPopular, models.SortUnanswered:
	default:
		return nil, apperror.Validation("sort must be newest, popular or unanswered")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	questions, err := s.questions.ListQuestions(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to list questions", err)
	}
	return questions, nil
}
