package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/healthcare-api/pkg/circuitbreaker"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_SendsModelAndPrompt(t *testing.T) {
	var got map[string]interface{}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Hello there","done":true}`))
	})

	m := metrics.New("test", prometheus.NewRegistry())
	client := NewClient(Config{BaseURL: srv.URL + "/", Model: "llama3"}, zerolog.Nop(), m)

	prompt := "say \"hi\"\nand\\bye"
	text, err := client.Generate(context.Background(), prompt)

	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
	assert.Equal(t, "llama3", got["model"])
	assert.Equal(t, prompt, got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("success")))
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"empty response", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":"  "}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.handler)
			client := NewClient(Config{BaseURL: srv.URL, Model: "m"}, zerolog.Nop(), nil)

			text, err := client.Generate(context.Background(), "q")

			assert.Error(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	client := NewClient(Config{BaseURL: srv.URL, Model: "m", Timeout: 50 * time.Millisecond}, zerolog.Nop(), nil)

	_, err := client.Generate(context.Background(), "q")

	assert.Error(t, err)
}

func TestGenerate_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	m := metrics.New("test", prometheus.NewRegistry())
	client := NewClient(Config{BaseURL: srv.URL, Model: "m"}, zerolog.Nop(), m)

	for i := 0; i < 5; i++ {
		_, err := client.Generate(context.Background(), "q")
		require.Error(t, err)
	}

	_, err := client.Generate(context.Background(), "q")

	assert.True(t, errors.Is(err, circuitbreaker.ErrOpen))
	assert.Equal(t, 5, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LLMRequests.WithLabelValues("rejected")))
}
