package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/healthcare-api/pkg/errors"
)

func respond(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondWithSuccess(t *testing.T) {
	w, body := respond(func(c *gin.Context) { RespondWithCreated(c, gin.H{"id": 1}) })

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", errors.NotFoundID("Facility", 3), http.StatusNotFound, "The Facility with ID 3 was not found. Please check the ID and try again."},
		{"validation", errors.Validation("name", "Facility name is required", "Facility"), http.StatusBadRequest, "The name field is invalid: Facility name is required"},
		{"duplicate", errors.Duplicate("taken", "Patient"), http.StatusBadRequest, "taken"},
		{"failure hides cause", errors.ServiceFailure("create", "Facility", stderrors.New("pq: connection refused")), http.StatusInternalServerError,
			"We encountered an issue while processing your request for Facility. Please try again later."},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(func(c *gin.Context) { RespondWithError(c, tt.err) })

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.status, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}
