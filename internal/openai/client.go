// Package openai provides an outbound client for an OpenAI-compatible
// chat completion API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 60 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 30 * time.Second

	completionsPath = "/v1/chat/completions"
)

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrNoChoices indicates the provider returned an empty choice list.
var ErrNoChoices = errors.New("completion response contains no choices")

// Message is a single entry in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the wire format of a chat completion request.
type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// completionResponse is the subset of the provider response we consume.
type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client calls a chat completion provider over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// NewClient creates a Client for the given provider endpoint.
// An empty apiKey produces an unconfigured client; callers must check
// Configured before invoking ChatCompletion.
func NewClient(baseURL, apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: newHTTPClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		logger:     logger.With("component", "openai.client"),
	}
}

// Configured reports whether a provider credential is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatCompletion sends the conversation to the provider and returns the
// text of the first choice verbatim. No retry is attempted.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	callID := ulid.Make().String()

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("chat completion request",
		"call_id", callID,
		"model", c.model,
		"max_tokens", maxTokens,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	// Bound the response read; provider responses are small.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var parsed completionResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			return "", fmt.Errorf("provider error (status %d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.Info("chat completion response",
		"call_id", callID,
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
	)

	return parsed.Choices[0].Message.Content, nil
}

// newHTTPClient creates an HTTP client configured for provider calls.
// It has explicit timeouts and does not follow redirects.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
