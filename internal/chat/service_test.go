package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	replies  []string
	errs     []error
	requests []openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}

	reply := "**Я рядом.** Расскажи подробнее?"
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
		},
		Usage: openai.Usage{PromptTokens: 1000, CompletionTokens: 500, TotalTokens: 1500},
	}, nil
}

func newTestService(c Completer, opts ...Option) *Service {
	s := NewService(c, NewMemorySessionStore(), "deepseek-chat", opts...)
	s.backoff = time.Millisecond
	return s
}

func TestService_StartSendEnd(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCompleter{}
	s := newTestService(fc)

	session, err := s.Start(ctx, 42, models.ChatModeCoach)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.ChatModeCoach, session.Mode)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, session.Messages[0].Role)

	reply, err := s.Send(ctx, 42, "Не могу начать проект")
	require.NoError(t, err)
	assert.Equal(t, "<b>Я рядом.</b> Расскажи подробнее?", reply.Text)
	assert.Equal(t, 1, reply.MessageCount)
	assert.Equal(t, 1500, reply.Usage.TotalTokens)
	assert.InDelta(t, 0.00028, reply.Cost, 1e-9)

	require.Len(t, fc.requests, 1)
	req := fc.requests[0]
	assert.Equal(t, "deepseek-chat", req.Model)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "Не могу начать проект", req.Messages[1].Content)

	stored, err := s.Session(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 3)
	assert.Equal(t, 1500, stored.TokenCount)

	ended, err := s.End(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ended.Active)
	assert.Equal(t, 1, ended.MessageCount)

	_, err = s.Send(ctx, 42, "ещё")
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = s.End(ctx, 42)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestService_UnknownModeFallsBack(t *testing.T) {
	session, err := newTestService(&fakeCompleter{}).Start(context.Background(), 1, "astrologer")
	require.NoError(t, err)
	assert.Equal(t, models.ChatModePsychologist, session.Mode)
}

func TestService_Unavailable(t *testing.T) {
	ctx := context.Background()

	s := newTestService(nil)
	_, err := s.Start(ctx, 1, models.ChatModeFriend)
	assert.ErrorIs(t, err, ErrUnavailable)

	var healthy atomic.Bool
	s = newTestService(&fakeCompleter{}, WithHealth(&healthy))
	assert.False(t, s.Available())
	_, err = s.Send(ctx, 1, "привет")
	assert.ErrorIs(t, err, ErrUnavailable)

	healthy.Store(true)
	assert.True(t, s.Available())
}

func TestService_HistoryTrimmed(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCompleter{}
	s := newTestService(fc)

	_, err := s.Start(ctx, 7, models.ChatModeFriend)
	require.NoError(t, err)

	for i := 0; i < 15; i++ {
		_, err := s.Send(ctx, 7, fmt.Sprintf("сообщение %d", i))
		require.NoError(t, err)
	}

	for _, req := range fc.requests {
		assert.LessOrEqual(t, len(req.Messages), maxHistory)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	}
	last := fc.requests[len(fc.requests)-1]
	assert.Equal(t, "сообщение 14", last.Messages[len(last.Messages)-1].Content)
}

func TestService_RetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCompleter{errs: []error{
		&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"},
		errors.New("connection reset"),
	}}
	s := newTestService(fc)

	_, err := s.Start(ctx, 3, models.ChatModePsychologist)
	require.NoError(t, err)

	reply, err := s.Send(ctx, 3, "привет")
	require.NoError(t, err)
	assert.Equal(t, 1, reply.MessageCount)
	assert.Len(t, fc.requests, 3)
}

func TestService_FailedSendLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCompleter{errs: []error{
		&openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"},
	}}
	s := newTestService(fc)

	_, err := s.Start(ctx, 5, models.ChatModePsychologist)
	require.NoError(t, err)

	_, err = s.Send(ctx, 5, "привет")
	require.Error(t, err)
	assert.Len(t, fc.requests, 1)

	session, err := s.Session(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, session.Messages, 1)
	assert.Zero(t, session.MessageCount)
}

func TestTrimHistory(t *testing.T) {
	messages := make([]models.ChatMessage, 25)
	for i := range messages {
		messages[i] = models.ChatMessage{Content: fmt.Sprint(i)}
	}

	trimmed := trimHistory(messages)
	require.Len(t, trimmed, 20)
	assert.Equal(t, "0", trimmed[0].Content)
	assert.Equal(t, "6", trimmed[1].Content)
	assert.Equal(t, "24", trimmed[19].Content)

	assert.Len(t, trimHistory(messages[:20]), 20)
}

func TestCalculateCost(t *testing.T) {
	assert.InDelta(t, 0.42, calculateCost(models.ChatUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}), 1e-9)
	assert.Zero(t, calculateCost(models.ChatUsage{}))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, models.ChatModeCoach, ParseMode(" Coach "))
	assert.Equal(t, models.ChatModeFriend, ParseMode("friend"))
	assert.Equal(t, models.ChatModePsychologist, ParseMode(""))
}

type fakeKV struct {
	data map[string]string
	ttl  map[string]time.Duration
}

func (f *fakeKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.data[key] = value
	f.ttl[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestValkeySessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := &fakeKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
	store := NewValkeySessionStore(kv)

	_, err := store.Load(ctx, 9)
	assert.ErrorIs(t, err, ErrNoSession)

	session := models.ChatSession{ID: "abc", UserID: 9, Mode: models.ChatModeFriend, Active: true,
		Messages: []models.ChatMessage{{Role: "system", Content: "hi"}}}
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, sessionTTL, kv.ttl["mindmate:chat_session:9"])

	loaded, err := store.Load(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Messages, loaded.Messages)

	require.NoError(t, store.Delete(ctx, 9))
	_, err = store.Load(ctx, 9)
	assert.ErrorIs(t, err, ErrNoSession)
}
