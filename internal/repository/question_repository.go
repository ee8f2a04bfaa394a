package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// QuestionRepository handles MongoDB operations for questions and answers.
// Answers live in their own collection keyed by question_id.
type QuestionRepository struct {
	client    *mongo.Client
	questions *mongo.Collection
	answers   *mongo.Collection
}

// NewQuestionRepository creates a new instance of QuestionRepository
func NewQuestionRepository(db *mongo.Database) *QuestionRepository {
	return &QuestionRepository{
		client:    db.Client(),
		questions: db.Collection("questions"),
		answers:   db.Collection("answers"),
	}
}

// CreateQuestion creates a new question in the database
func (r *QuestionRepository) CreateQuestion(ctx context.Context, question *models.Question) (*models.Question, error) {
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}

	result, err := r.questions.InsertOne(ctx, question)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert question")
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	question.ID = insertedID

	logger.Log.WithField("question_id", question.ID.Hex()).Info("Question created successfully")
	return question, nil
}

// GetQuestionByID fetches a question by its ID
func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id primitive.ObjectID) (*models.Question, error) {
	var question models.Question
	err := r.questions.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("question_id", id.Hex()).Error("Failed to find question by ID")
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

// ListQuestions fetches questions in the order the filter asks for
func (r *QuestionRepository) ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	query := bson.M{}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch filter.Sort {
	case models.SortPopular:
		sort = bson.D{{Key: "votes", Value: -1}, {Key: "created_at", Value: -1}}
	case models.SortUnanswered:
		query["answers_count"] = 0
	}

	opts := options.Find().SetSort(sort)
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.questions.Find(ctx, query, opts)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch questions")
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	return questions, nil
}

// IncrementViews bumps the view counter of a question
func (r *QuestionRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.questions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateAnswer inserts the answer and increments answers_count inside one
// multi-document transaction. WithTransaction retries on transient errors and
// unknown commit results, so concurrent answers to one question never lose an
// increment. Requires a replica set.
func (r *QuestionRepository) CreateAnswer(ctx context.Context, questionID primitive.ObjectID, answer *models.Answer) (*models.Answer, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var question models.Question
		err := r.questions.FindOne(sc, bson.M{"_id": questionID}).Decode(&question)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		answer.ID = primitive.NewObjectID()
		answer.QuestionID = question.ID
		answer.QuestionTitle = question.Title
		if answer.CreatedAt.IsZero() {
			answer.CreatedAt = time.Now()
		}
		if _, err := r.answers.InsertOne(sc, answer); err != nil {
			return nil, err
		}

		_, err = r.questions.UpdateOne(sc,
			bson.M{"_id": question.ID},
			bson.M{"$inc": bson.M{"answers_count": 1}},
		)
		return nil, err
	}, txnOpts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		logger.Log.WithError(err).WithField("question_id", questionID.Hex()).Error("Answer transaction failed")
		return nil, fmt.Errorf("answer transaction failed: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"question_id": questionID.Hex(),
		"answer_id":   answer.ID.Hex(),
	}).Info("Answer created successfully")
	return answer, nil
}

// GetAnswers returns a question's answers, accepted first then oldest first
func (r *QuestionRepository) GetAnswers(ctx context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "is_accepted", Value: -1}, {Key: "created_at", Value: 1}})
	cursor, err := r.answers.Find(ctx, bson.M{"question_id": questionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch answers: %w", err)
	}
	defer cursor.Close(ctx)

	answers := []models.Answer{}
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers, nil
}

// CountAnswers counts the answer documents of a question
func (r *QuestionRepository) CountAnswers(ctx context.Context, questionID primitive.ObjectID) (int, error) {
	n, err := r.answers.CountDocuments(ctx, bson.M{"question_id": questionID})
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return int(n), nil
}

// SetAnswersCount overwrites the stored counter if it still equals expected.
// Every answer commit moves the counter, so a match means no answer landed
// since the caller read it.
func (r *QuestionRepository) SetAnswersCount(ctx context.Context, questionID primitive.ObjectID, expected, count int) error {
	res, err := r.questions.UpdateOne(ctx,
		bson.M{"_id": questionID, "answers_count": expected},
		bson.M{"$set": bson.M{"answers_count": count}},
	)
	if err != nil {
		return fmt.Errorf("failed to set answers count: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.questions.CountDocuments(ctx, bson.M{"_id": questionID})
	if err != nil {
		return fmt.Errorf("failed to check question: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return fmt.Errorf("answers count of %s changed: %w", questionID.Hex(), ErrTxConflict)
}
