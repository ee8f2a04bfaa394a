package firestoredb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// emulatorStore connects to the Firestore emulator. The client picks up
// FIRESTORE_EMULATOR_HOST on its own.
func emulatorStore(t *testing.T) repository.QuestionStore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "campus-overflow-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewStore(client, 50).Repositories().Questions
}

func TestCreateAnswer_Emulator(t *testing.T) {
	questions := emulatorStore(t)
	ctx := context.Background()

	_, err := questions.CreateAnswer(ctx, primitive.NewObjectID(), &models.Answer{Body: "hi"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	q, err := questions.CreateQuestion(ctx, &models.Question{Title: "T", Body: "b"})
	require.NoError(t, err)

	a, err := questions.CreateAnswer(ctx, q.ID, &models.Answer{Body: "Try the library"})
	require.NoError(t, err)
	assert.Equal(t, q.ID, a.QuestionID)
	assert.Equal(t, "T", a.QuestionTitle)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := questions.CreateAnswer(ctx, q.ID, &models.Answer{Body: fmt.Sprintf("answer %d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := questions.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	count, err := questions.CountAnswers(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, n+1, count)
	assert.Equal(t, count, stored.AnswersCount)
}

func TestSetAnswersCount_Emulator(t *testing.T) {
	questions := emulatorStore(t)
	ctx := context.Background()

	q, err := questions.CreateQuestion(ctx, &models.Question{Title: "T", Body: "b"})
	require.NoError(t, err)

	assert.ErrorIs(t, questions.SetAnswersCount(ctx, q.ID, 3, 1), repository.ErrTxConflict)
	require.NoError(t, questions.SetAnswersCount(ctx, q.ID, 0, 4))

	stored, err := questions.GetQuestionByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.AnswersCount)

	assert.ErrorIs(t, questions.SetAnswersCount(ctx, primitive.NewObjectID(), 0, 1), repository.ErrNotFound)
}
