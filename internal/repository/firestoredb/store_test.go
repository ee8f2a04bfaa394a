package firestoredb

import (
	"testing"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestChunk(t *testing.T) {
	names := make([]string, 65)
	for i := range names {
		names[i] = string(rune('a' + i%26))
	}

	batches := chunk(names, maxInValues)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 30)
	assert.Len(t, batches[1], 30)
	assert.Len(t, batches[2], 5)

	assert.Empty(t, chunk(nil, maxInValues))
}

func TestDocConversionsKeepIDs(t *testing.T) {
	author := models.Author{ID: primitive.NewObjectID(), Name: "alice", AvatarURL: "https://placehold.co/100x100.png?text=a"}
	assert.Equal(t, author, fromAuthorDoc(toAuthorDoc(author)))

	a := &models.Answer{
		Body:          "try the library",
		Author:        author,
		CreatedAt:     time.Now(),
		QuestionID:    primitive.NewObjectID(),
		QuestionTitle: "Where to study?",
	}
	doc := toAnswerDoc(a)
	assert.Equal(t, a.QuestionID.Hex(), doc.QuestionID)
	assert.Equal(t, author.ID.Hex(), doc.Author.ID)
}

func TestDocID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := docID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = docID("not-an-object-id")
	assert.Error(t, err)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, isNotFound(status.Error(codes.Aborted, "contention")))
	assert.False(t, isNotFound(nil))
}
