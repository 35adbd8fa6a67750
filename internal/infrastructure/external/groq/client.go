// Package groq implements the AI tutor client over the Groq chat
// completions API (OpenAI-compatible). The call is guarded by a retry layer
// for transient failures and a circuit breaker so a broken upstream does not
// stall every conversation.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/circuitbreaker"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/logger"
	"github.com/lingua-hub/lingua-tutor-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Groq API client.
type ClientConfig struct {
	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// Model is the completion model name.
	Model string

	// Temperature controls response randomness.
	Temperature float64

	// MaxTokens bounds the completion length.
	MaxTokens int

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RetryConfig controls retry behavior for transient failures.
	RetryConfig retry.Config

	// BreakerConfig controls the circuit breaker.
	BreakerConfig circuitbreaker.Config

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:       "https://api.groq.com/openai/v1",
		APIKey:        apiKey,
		Model:         "llama-3.3-70b-versatile",
		Temperature:   0.7,
		MaxTokens:     1000,
		Timeout:       30 * time.Second,
		RetryConfig:   retry.DefaultConfig(),
		BreakerConfig: circuitbreaker.DefaultConfig("groq"),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client calls the Groq chat completions API.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// NewClient creates a new Groq API client.
func NewClient(config ClientConfig) *Client {
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("groq"))

	if config.BreakerConfig.OnStateChange == nil {
		config.BreakerConfig.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		}
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    circuitbreaker.New(config.BreakerConfig),
		log:        log,
	}
}

// Chat sends the user's message with session context to the tutor and
// returns the reply text with the optional parsed analysis.
func (c *Client) Chat(ctx context.Context, s *session.Session, userMessage string) (string, *session.Analysis, error) {
	req := chatRequest{
		Model:       c.config.Model,
		Messages:    buildMessages(s, userMessage),
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	started := time.Now()
	var raw string

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, c.config.RetryConfig, func(ctx context.Context) error {
			var err error
			raw, err = c.complete(ctx, req)
			return err
		})
	})
	if err != nil {
		c.log.Error("tutor call failed",
			logger.UserID(s.UserID.String()),
			logger.Latency(time.Since(started)),
			logger.Err(err))
		return "", nil, shared.WrapError("tutor", "Chat", shared.ErrServiceUnavailable,
			"tutor completion failed", err)
	}

	reply := ParseReply(raw)
	if reply.Analysis == nil {
		// Tolerated: the reply is still usable without the analysis block.
		c.log.Debug("completion carried no parseable analysis",
			logger.UserID(s.UserID.String()))
	}

	c.log.Info("tutor reply",
		logger.UserID(s.UserID.String()),
		logger.Language(s.Language.String()),
		logger.Latency(time.Since(started)))
	return reply.Response, reply.Analysis, nil
}

// complete performs one HTTP round trip to the completions endpoint.
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", retry.Permanent(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		err := fmt.Errorf("groq: status %d: %s", resp.StatusCode, apiErr.Error.Message)

		// Client errors will not succeed on retry; 429 and 5xx might.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusTooManyRequests {
			return "", retry.Permanent(err)
		}
		return "", err
	}

	var completion chatResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return "", retry.Permanent(fmt.Errorf("groq: decode response: %w", err))
	}
	if len(completion.Choices) == 0 {
		return "", retry.Permanent(shared.ErrTutorInvalidResponse)
	}

	return completion.Choices[0].Message.Content, nil
}
