package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/render"
)

const (
	maxHistory  = 20
	maxTokens   = 1000
	temperature = 0.7

	promptPricePerMillion     = 0.14
	completionPricePerMillion = 0.28

	maxRetries     = 3
	initialBackoff = time.Second
)

var (
	ErrNoSession   = errors.New("no active chat session")
	ErrUnavailable = errors.New("chat is unavailable")
)

// Completer is the chat completion call of the DeepSeek client.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Reply struct {
	Text         string // Telegram HTML
	Raw          string
	Usage        models.ChatUsage
	MessageCount int
	Cost         float64 // session total, USD
}

type Service struct {
	completer Completer
	store     SessionStore
	model     string
	healthy   *atomic.Bool
	backoff   time.Duration
	now       func() time.Time
}

type Option func(*Service)

// WithHealth makes the service report unavailable while healthy is false.
func WithHealth(healthy *atomic.Bool) Option {
	return func(s *Service) { s.healthy = healthy }
}

// NewService builds the chat service. A nil completer means no API key was
// configured and every call returns ErrUnavailable.
func NewService(completer Completer, store SessionStore, model string, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		store:     store,
		model:     model,
		backoff:   initialBackoff,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Available() bool {
	if s.completer == nil {
		return false
	}
	return s.healthy == nil || s.healthy.Load()
}

// Start opens a new session for the user, replacing any previous one.
func (s *Service) Start(ctx context.Context, userID int64, mode models.ChatMode) (models.ChatSession, error) {
	if !s.Available() {
		return models.ChatSession{}, ErrUnavailable
	}

	mode = ParseMode(string(mode))
	now := s.now().UTC()
	session := models.ChatSession{
		ID:     uuid.NewString(),
		UserID: userID,
		Mode:   mode,
		Messages: []models.ChatMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(mode)},
		},
		Active:    true,
		CreatedAt: now,
	}

	if err := s.store.Save(ctx, session); err != nil {
		return models.ChatSession{}, err
	}

	slog.Info("[ChatService] Session started",
		slog.String("session_id", session.ID),
		slog.Int64("user_id", userID),
		slog.String("mode", string(mode)))
	return session, nil
}

// Send forwards the user's message and records the assistant reply. The
// session is left untouched when the API call fails.
func (s *Service) Send(ctx context.Context, userID int64, text string) (Reply, error) {
	if !s.Available() {
		return Reply{}, ErrUnavailable
	}

	session, err := s.Session(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	session.Messages = trimHistory(append(session.Messages,
		models.ChatMessage{Role: openai.ChatMessageRoleUser, Content: text}))

	raw, usage, err := s.complete(ctx, session.Messages)
	if err != nil {
		return Reply{}, err
	}

	session.Messages = append(session.Messages,
		models.ChatMessage{Role: openai.ChatMessageRoleAssistant, Content: raw})
	session.MessageCount++
	session.TokenCount += usage.TotalTokens
	session.TotalCost += calculateCost(usage)
	session.LastMessageAt = s.now().UTC()

	if err := s.store.Save(ctx, session); err != nil {
		return Reply{}, err
	}

	slog.Info("[ChatService] Message processed",
		slog.String("session_id", session.ID),
		slog.Int("total_tokens", usage.TotalTokens))

	return Reply{
		Text:         render.Truncate(render.TelegramHTML(raw), render.MaxMessageLength),
		Raw:          raw,
		Usage:        usage,
		MessageCount: session.MessageCount,
		Cost:         session.TotalCost,
	}, nil
}

// End closes the user's session and returns its final state.
func (s *Service) End(ctx context.Context, userID int64) (models.ChatSession, error) {
	session, err := s.Session(ctx, userID)
	if err != nil {
		return models.ChatSession{}, err
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return models.ChatSession{}, err
	}
	session.Active = false

	slog.Info("[ChatService] Session ended",
		slog.String("session_id", session.ID),
		slog.Int("messages", session.MessageCount))
	return session, nil
}

func (s *Service) Session(ctx context.Context, userID int64) (models.ChatSession, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.ChatSession{}, err
	}
	if !session.Active {
		return models.ChatSession{}, ErrNoSession
	}
	return session, nil
}

func (s *Service) complete(ctx context.Context, history []models.ChatMessage) (string, models.ChatUsage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	backoff := s.backoff
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := s.completer.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", models.ChatUsage{}, fmt.Errorf("[ChatService] empty completion response")
			}
			return resp.Choices[0].Message.Content, models.ChatUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}, nil
		}

		lastErr = err
		if !retryable(err) || attempt == maxRetries {
			break
		}

		slog.Warn("[ChatService] Completion failed, retrying...",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return "", models.ChatUsage{}, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", models.ChatUsage{}, fmt.Errorf("[ChatService] completion failed: %w", lastErr)
}

// retryable reports whether another attempt could succeed: rate limits,
// server errors and transport failures are retried, other API errors are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

// trimHistory keeps the system prompt plus the most recent messages.
func trimHistory(messages []models.ChatMessage) []models.ChatMessage {
	if len(messages) <= maxHistory {
		return messages
	}
	trimmed := make([]models.ChatMessage, 0, maxHistory)
	trimmed = append(trimmed, messages[0])
	return append(trimmed, messages[len(messages)-(maxHistory-1):]...)
}

func calculateCost(usage models.ChatUsage) float64 {
	cost := float64(usage.PromptTokens)/1_000_000*promptPricePerMillion +
		float64(usage.CompletionTokens)/1_000_000*completionPricePerMillion
	return math.Round(cost*1e6) / 1e6
}
