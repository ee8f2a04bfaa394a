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

type QuestionRepository struct {
	store *Store
}

func (r *QuestionRepository) questions() *firestore.CollectionRef {
	return r.store.client.Collection(questionsCollection)
}

func (r *QuestionRepository) answers(questionID primitive.ObjectID) *firestore.CollectionRef {
	return r.questions().Doc(questionID.Hex()).Collection(answersCollection)
}

func (r *QuestionRepository) CreateQuestion(ctx context.Context, question *models.Question) (*models.Question, error) {
	question.ID = primitive.NewObjectID()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	if _, err := r.questions().Doc(question.ID.Hex()).Create(ctx, toQuestionDoc(question)); err != nil {
		logger.Log.WithError(err).Error("Failed to create question in firestore")
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}
	return question, nil
}

func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	snap, err := r.questions().Doc(id.Hex()).Get(ctx)
	if isNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	q, err := fromQuestionSnap(snap)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuestionRepository) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	query := r.questions().Query
	if filter.Tag != "" {
		query = query.Where("tags", "array-contains", filter.Tag)
	}
	switch filter.Sort {
	case models.SortPopular:
		query = query.OrderBy("votes", firestore.Desc)
	case models.SortUnanswered:
		query = query.Where("answersCount", "==", 0)
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		query = query.Limit(int(filter.Limit))
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	out := make([]models.Question, 0, len(snaps))
	for _, snap := range snaps {
		q, err := fromQuestionSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func (r *QuestionRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.questions().Doc(id.Hex()).Update(ctx, []firestore.Update{{Path: "views", Value: firestore.Increment(1)}})
	if isNotFound(err) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// CreateAnswer runs the read of the question, the answer insert and the
// counter update in one Firestore transaction; RunTransaction retries on
// contention up to the configured attempts.
func (r *QuestionRepository) CreateAnswer(ctx context.Context, questionID primitive.ObjectID, answer *models.Answer) (*models.Answer, error) {
	qRef := r.questions().Doc(questionID.Hex())

	err := r.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(qRef)
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		question, err := fromQuestionSnap(snap)
		if err != nil {
			return err
		}

		answer.ID = primitive.NewObjectID()
		answer.QuestionID = question.ID
		answer.QuestionTitle = question.Title
		if answer.CreatedAt.IsZero() {
			answer.CreatedAt = time.Now()
		}

		if err := tx.Create(r.answers(questionID).Doc(answer.ID.Hex()), toAnswerDoc(answer)); err != nil {
			return err
		}
		return tx.Update(qRef, []firestore.Update{{Path: "answersCount", Value: firestore.Increment(1)}})
	}, firestore.MaxAttempts(r.store.maxAttempts))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", questionID.Hex()).Error("Answer transaction failed")
		return nil, fmt.Errorf("answer transaction failed: %w", err)
	}
	return answer, nil
}

func (r *QuestionRepository) GetAnswers(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	snaps, err := r.answers(questionID).
		OrderBy("isAccepted", firestore.Desc).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch answers: %w", err)
	}
	out := make([]models.Answer, 0, len(snaps))
	for _, snap := range snaps {
		a, err := fromAnswerSnap(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *QuestionRepository) CountAnswers(ctx context.Context, questionID primitive.ObjectID) (int, error) {
	snaps, err := r.answers(questionID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return len(snaps), nil
}

// SetAnswersCount compares and sets the counter inside a transaction.
func (r *QuestionRepository) SetAnswersCount(ctx context.Context, questionID primitive.ObjectID, expected, count int) error {
	ref := r.questions().Doc(questionID.Hex())
	err := r.store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		q, err := fromQuestionSnap(snap)
		if err != nil {
			return err
		}
		if q.AnswersCount != expected {
			return repository.ErrTxConflict
		}
		return tx.Update(ref, []firestore.Update{{Path: "answersCount", Value: count}})
	}, firestore.MaxAttempts(r.store.maxAttempts))
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrTxConflict) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to set answers count: %w", err)
	}
	return nil
}
