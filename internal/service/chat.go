package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/castpro/castpro/internal/metrics"
	"github.com/castpro/castpro/internal/openai"
)

// Chat service errors.
var (
	ErrChatNotConfigured = errors.New("chat provider API key not configured")
	ErrMessageRequired   = errors.New("message is required")
)

// Fixed sampling parameters for the assistant.
const (
	chatMaxTokens   = 300
	chatTemperature = 0.7
)

// fishingAssistantPrompt is the fixed system instruction prepended to
// every conversation.
const fishingAssistantPrompt = `You are an AI fishing assistant. Your job is to:

Explain local fishing regulations clearly.
Give species-specific fishing tips (habits, baits, locations).
Recommend tackle based on species, location, season.
Be friendly, concise, and helpful.

Always provide practical, actionable advice. If asked about specific locations, mention that regulations can vary by state/province and recommend checking local authorities. Keep responses under 200 words unless more detail is specifically requested.`

// Completer is the outbound chat completion dependency.
type Completer interface {
	Configured() bool
	ChatCompletion(ctx context.Context, messages []openai.Message, maxTokens int, temperature float64) (string, error)
}

// ChatService relays user messages to the completion provider.
// Each call is independent: no retry, no streaming, no conversation memory.
type ChatService struct {
	client  Completer
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewChatService creates a new ChatService.
func NewChatService(client Completer, logger *slog.Logger, recorder metrics.Recorder) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{
		client:  client,
		logger:  logger,
		metrics: recorder,
	}
}

// Ask forwards the message to the provider with the fixed system prompt
// and returns the provider's text response verbatim.
// Fails without any network call when no credential is configured.
func (s *ChatService) Ask(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", ErrMessageRequired
	}

	if !s.client.Configured() {
		s.logger.Error("chat request rejected", "reason", "api_key_not_configured")
		s.metrics.IncChatRequest("unconfigured")
		return "", ErrChatNotConfigured
	}

	messages := []openai.Message{
		{Role: openai.RoleSystem, Content: fishingAssistantPrompt},
		{Role: openai.RoleUser, Content: message},
	}

	start := time.Now()
	response, err := s.client.ChatCompletion(ctx, messages, chatMaxTokens, chatTemperature)
	s.metrics.ObserveChatUpstreamDuration(time.Since(start))

	if err != nil {
		s.metrics.IncChatRequest("upstream_error")
		return "", fmt.Errorf("chat completion: %w", err)
	}

	s.metrics.IncChatRequest("success")

	return response, nil
}
