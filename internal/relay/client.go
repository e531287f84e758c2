package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/finking/chat-relay/internal/config"
	"github.com/finking/chat-relay/internal/metrics"
	"github.com/finking/chat-relay/internal/models"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of an upstream error body is read for logging
const maxErrorBody = 4096

// Client performs the single outbound call to the DeepSeek completions API.
// It is safe for concurrent use; all fields are read-only after New.
type Client struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// New creates a new upstream client
func New(cfg config.UpstreamConfig, logger *zap.Logger, collector *metrics.Collector) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout, // hard cutoff, no retries past it
		},
		logger:  logger,
		metrics: collector,
	}
}

// Model returns the fixed upstream model identifier
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete relays one user message to the completions endpoint and returns
// the first choice's content. Every failure is classified exactly once into
// a tagged Error; the caller switches on the kind.
func (c *Client) Complete(ctx context.Context, message string) (string, *Error) {
	reply, relayErr := c.complete(ctx, message)
	if relayErr != nil {
		c.metrics.RecordOutcome(relayErr.Kind.String())
		return "", relayErr
	}
	c.metrics.RecordOutcome("ok")
	return reply, nil
}

func (c *Client) complete(ctx context.Context, message string) (string, *Error) {
	if c.cfg.APIKey == "" {
		c.logger.Error("Upstream API key not configured")
		return "", newError(KindConfig, nil)
	}

	payload := c.buildRequest(message)
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", newError(KindInternal, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", newError(KindInternal, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.ObserveUpstream(time.Since(start))
	if err != nil {
		return "", c.classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Upstream detail is logged here and goes no further
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("Upstream API error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return "", newError(KindAuth, nil)
		case http.StatusTooManyRequests:
			return "", newError(KindRateLimited, nil)
		default:
			return "", newError(KindUnavailable, nil)
		}
	}

	var completion models.CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		c.logger.Error("Failed to decode upstream response", zap.Error(err))
		return "", newError(KindFormat, err)
	}

	if len(completion.Choices) == 0 {
		c.logger.Error("Upstream response has no choices")
		return "", newError(KindFormat, nil)
	}

	reply := completion.Choices[0].Message.Content
	c.logger.Info("Upstream completion succeeded",
		zap.Duration("latency", time.Since(start)),
		zap.String("reply_preview", truncate(reply, 50)))

	return reply, nil
}

// buildRequest constructs the upstream payload: the fixed system prompt,
// then the user message, with the service's fixed sampling constants.
func (c *Client) buildRequest(message string) *models.CompletionRequest {
	return &models.CompletionRequest{
		Model: c.cfg.Model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature:      c.cfg.Temperature,
		MaxTokens:        c.cfg.MaxTokens,
		TopP:             c.cfg.TopP,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		PresencePenalty:  c.cfg.PresencePenalty,
	}
}

// classifyTransport splits transport failures into timeout vs network
func (c *Client) classifyTransport(err error) *Error {
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		c.logger.Error("Upstream API request timeout", zap.Error(err))
		return newError(KindTimeout, err)
	}
	c.logger.Error("Upstream network error", zap.Error(err))
	return newError(KindNetwork, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
