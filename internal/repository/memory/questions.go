package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) CreateQuestion(_ context.Context, question *models.Question) (*models.Question, error) {
	question.ID = primitive.NewObjectID()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	question.Tags = append([]string(nil), question.Tags...)

	s.mu.Lock()
	s.questions[question.ID] = &questionDoc{question: *question, version: 1}
	s.mu.Unlock()

	out := *question
	return &out, nil
}

func (s *Store) GetQuestionByID(_ context.Context, id primitive.ObjectID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	q := doc.question
	return &q, nil
}

func (s *Store) ListQuestions(_ context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	s.mu.RLock()
	out := []models.Question{}
	for _, doc := range s.questions {
		q := doc.question
		if filter.Tag != "" && !containsTag(q.Tags, filter.Tag) {
			continue
		}
		if filter.Sort == models.SortUnanswered && q.AnswersCount != 0 {
			continue
		}
		out = append(out, q)
	}
	s.mu.RUnlock()

	newestFirst := func(a, b models.Question) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.Hex() > b.ID.Hex()
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Sort == models.SortPopular && out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return newestFirst(out[i], out[j])
	})

	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.questions[id]
	if !ok {
		return repository.ErrNotFound
	}
	doc.question.Views++
	doc.version++
	return nil
}

// CreateAnswer reads the question and its version, then commits the answer
// and the incremented counter only if the version is unchanged. On conflict
// it backs off and retries up to maxAttempts times.
func (s *Store) CreateAnswer(ctx context.Context, questionID primitive.ObjectID, answer *models.Answer) (*models.Answer, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.mu.RLock()
		doc, ok := s.questions[questionID]
		var snapshot models.Question
		var version uint64
		if ok {
			snapshot, version = doc.question, doc.version
		}
		s.mu.RUnlock()
		if !ok {
			return nil, repository.ErrNotFound
		}

		staged := *answer
		staged.ID = primitive.NewObjectID()
		staged.QuestionID = snapshot.ID
		staged.QuestionTitle = snapshot.Title
		if staged.CreatedAt.IsZero() {
			staged.CreatedAt = time.Now()
		}
		nextCount := snapshot.AnswersCount + 1

		if s.beforeCommit != nil {
			s.beforeCommit()
		}

		s.mu.Lock()
		current, ok := s.questions[questionID]
		if !ok {
			s.mu.Unlock()
			return nil, repository.ErrNotFound
		}
		if current.version == version {
			current.question.AnswersCount = nextCount
			current.version++
			s.answers[questionID] = append(s.answers[questionID], staged)
			s.mu.Unlock()

			*answer = staged
			return &staged, nil
		}
		s.mu.Unlock()

		if err := s.wait(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("question %s after %d attempts: %w", questionID.Hex(), s.maxAttempts, repository.ErrTxConflict)
}

func (s *Store) GetAnswers(_ context.Context, questionID primitive.ObjectID) ([]models.Answer, error) {
	s.mu.RLock()
	out := append([]models.Answer{}, s.answers[questionID]...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsAccepted != out[j].IsAccepted {
			return out[i].IsAccepted
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CountAnswers(_ context.Context, questionID primitive.ObjectID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.answers[questionID]), nil
}

func (s *Store) SetAnswersCount(_ context.Context, questionID primitive.ObjectID, expected, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.questions[questionID]
	if !ok {
		return repository.ErrNotFound
	}
	if doc.question.AnswersCount != expected {
		return fmt.Errorf("answers count of %s changed: %w", questionID.Hex(), repository.ErrTxConflict)
	}
	doc.question.AnswersCount = count
	doc.version++
	return nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
