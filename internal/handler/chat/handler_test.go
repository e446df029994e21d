package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/pkg/validator"
)

type processor struct {
	mock.Mock
}

func (p *processor) Process(ctx context.Context, req model.ChatRequest) model.ChatResponse {
	return p.Called(ctx, req).Get(0).(model.ChatResponse)
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func setup() (*gin.Engine, *processor) {
	gin.SetMode(gin.TestMode)
	p := new(processor)
	r := gin.New()
	NewHandler(p, validator.New()).RegisterRoutes(r.Group("/api/v1"))
	return r, p
}

func TestChat(t *testing.T) {
	r, p := setup()
	p.On("Process", mock.Anything, model.ChatRequest{Query: "hello"}).
		Return(model.ChatResponse{Response: "Hi there"})

	w := post(r, `{"query":"hello"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"response":"Hi there"}}`, w.Body.String())
}

func TestChat_BlankQuery(t *testing.T) {
	r, p := setup()

	for _, body := range []string{`{"query":"   "}`, `{}`, `not json`} {
		w := post(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Contains(t, post(r, `{"query":""}`).Body.String(), "Query is required")
	p.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}
