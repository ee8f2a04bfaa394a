package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest},
		{"not found", NotFound("question"), http.StatusNotFound},
		{"conflict", Conflict("email already in use"), http.StatusConflict},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"unauthorized", Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{"internal", Internal("failed", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("handler: %w", NotFound("user")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestInternal_KeepsCauseForErrorsIs(t *testing.T) {
	cause := errors.New("write conflict")
	err := Internal("failed to create answer", cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to create answer", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "question not found", Message(NotFound("question")))
	assert.Equal(t, "internal server error", Message(errors.New("driver detail")))
}
