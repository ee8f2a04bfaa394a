package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-16-chars"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("64b7f0c2a1b2c3d4e5f60718", "alice@campus.edu", testSecret, time.Hour)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "alice@campus.edu", claims.Email)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken("u1", "a@b.c", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", "a@b.c", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "another-secret-entirely")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier(t *testing.T) {
	token, err := GenerateToken("u1", "a@b.c", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := Verifier{Secret: testSecret}.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}
