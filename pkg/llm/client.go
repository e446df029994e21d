// Package llm is a client for an Ollama compatible text generation server.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/pkg/circuitbreaker"
	"github.com/jwalitptl/healthcare-api/pkg/metrics"
)

const (
	generatePath   = "/api/generate"
	defaultTimeout = 30 * time.Second
)

var ErrEmptyResponse = errors.New("empty response from text generation server")

// Generator turns a prompt into a single completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type Client struct {
	http    *resty.Client
	model   string
	breaker *circuitbreaker.CircuitBreaker
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient builds a client. m may be nil.
func NewClient(cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger = logger.With().Str("component", "llm").Logger()

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:  http,
		model: cfg.Model,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:    "llm",
			Timeout: 30 * time.Second,
			OnStateChange: func(name, from, to string) {
				logger.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("circuit breaker state changed")
			},
		}),
		logger:  logger,
		metrics: m,
	}
}

// Generate posts prompt to the server and returns the response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	var text string
	err := c.breaker.Execute(func() error {
		var out generateResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(generateRequest{Model: c.model, Prompt: prompt, Stream: false}).
			SetResult(&out).
			Post(generatePath)
		if err != nil {
			return fmt.Errorf("call text generation server: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("text generation server returned %d", resp.StatusCode())
		}
		if strings.TrimSpace(out.Response) == "" {
			return ErrEmptyResponse
		}
		text = out.Response
		return nil
	})

	c.observe(start, err)
	if err != nil {
		c.logger.Error().Err(err).Msg("text generation failed")
		return "", err
	}
	return text, nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpen):
		status = "rejected"
	case err != nil:
		status = "error"
	}
	c.metrics.LLMRequests.WithLabelValues(status).Inc()
	c.metrics.LLMLatency.Observe(time.Since(start).Seconds())
}
