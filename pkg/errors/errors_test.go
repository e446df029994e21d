package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFoundID("Facility", 3), http.StatusNotFound},
		{"validation", Validation("name", "Facility name is required", "Facility"), http.StatusBadRequest},
		{"duplicate", Duplicate("dup", "Patient"), http.StatusBadRequest},
		{"unauthorized", Unauthorized(nil), http.StatusUnauthorized},
		{"service failure", ServiceFailure("create", "Facility", stderrors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestServiceFailureKeepsCauseOutOfMessage(t *testing.T) {
	cause := stderrors.New("pq: connection refused")
	err := ServiceFailure("create", "Facility", cause)

	assert.NotContains(t, err.Message, "connection refused")
	assert.Contains(t, err.Detail, "Failed to create Facility: pq: connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestAsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NotFoundID("Patient", 9))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsDuplicate(wrapped))
}

func TestPassthrough(t *testing.T) {
	assert.True(t, Passthrough(NotFound("Patient")))
	assert.True(t, Passthrough(Duplicate("x", "Patient")))
	assert.False(t, Passthrough(ServiceFailure("update", "Patient", nil)))
	assert.False(t, Passthrough(stderrors.New("plain")))
}
