// Package memory is an in-process document store used for local development
// and tests. Question documents carry a version so answer creation can run as
// an optimistic read-then-conditional-write transaction, the same guarantee
// the Mongo and Firestore backends get from their transaction primitives.
package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultMaxAttempts = 8
	defaultBackoff     = time.Millisecond
)

type questionDoc struct {
	question models.Question
	version  uint64
}

// Store keeps every collection in maps guarded by one RWMutex.
type Store struct {
	mu            sync.RWMutex
	users         map[primitive.ObjectID]models.User
	questions     map[primitive.ObjectID]*questionDoc
	answers       map[primitive.ObjectID][]models.Answer
	notifications []models.Notification

	maxAttempts int
	backoff     time.Duration

	// beforeCommit runs between the read and the conditional write of an
	// answer transaction. Tests use it to inject concurrent writers.
	beforeCommit func()
}

type Option func(*Store)

// WithMaxAttempts bounds how often an answer transaction is retried on conflict.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between conflicting attempts.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		users:       make(map[primitive.ObjectID]models.User),
		questions:   make(map[primitive.ObjectID]*questionDoc),
		answers:     make(map[primitive.ObjectID][]models.Answer),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:         s,
		Questions:     s,
		Notifications: s,
	}
}

// wait sleeps a jittered, linearly growing delay or returns early on ctx.
func (s *Store) wait(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil || s.backoff == 0 {
		return err
	}
	d := time.Duration(rand.Int63n(int64(s.backoff)*int64(attempt) + 1))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
