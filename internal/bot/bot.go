package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spacesedan/mindmate/internal/chat"
	"github.com/spacesedan/mindmate/internal/db"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/ratelimit"
	"github.com/spacesedan/mindmate/internal/render"
)

const publishTimeout = 5 * time.Second

// Sender is the part of *tgbotapi.BotAPI the bot uses to reply.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Analyzer interface {
	Analyze(text string) models.Analysis
}

type ChatService interface {
	Available() bool
	Start(ctx context.Context, userID int64, mode models.ChatMode) (models.ChatSession, error)
	Send(ctx context.Context, userID int64, text string) (chat.Reply, error)
	End(ctx context.Context, userID int64) (models.ChatSession, error)
}

type AnalysisPublisher interface {
	PublishAnalysis(ctx context.Context, event models.AnalysisEvent) error
}

type AnalysisArchiver interface {
	Archive(userID int64, analysis models.Analysis)
}

// UpdateDeduper remembers handled update ids across restarts and replicas.
type UpdateDeduper interface {
	IsProcessed(ctx context.Context, key string) bool
	MarkProcessed(ctx context.Context, key string) error
}

// Deps are the bot's collaborators. Publisher, Archive, Dedupe and Location
// are optional.
type Deps struct {
	Sender    Sender
	Analyzer  Analyzer
	Store     db.Store
	Chat      ChatService
	Limiter   ratelimit.Limiter
	Publisher AnalysisPublisher
	Archive   AnalysisArchiver
	Dedupe    UpdateDeduper
	Location  *time.Location
}

type Bot struct {
	Deps
	states      *stateMachine
	queuesMu    sync.Mutex
	queues      map[int64]*chatQueue
	idleTimeout time.Duration
	now         func() time.Time
}

func New(deps Deps) *Bot {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Bot{
		Deps:        deps,
		states:      newStateMachine(),
		queues:      make(map[int64]*chatQueue),
		idleTimeout: chatWorkerIdle,
		now:         time.Now,
	}
}

// Run handles updates until ctx is done or the channel closes. Updates from
// different chats are handled concurrently, updates from one chat in order.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()

	slog.Info("[Bot] Listening for updates")
	for {
		select {
		case <-ctx.Done():
			slog.Info("[Bot] Stopping update loop")
			return
		case update, ok := <-updates:
			if !ok {
				slog.Warn("[Bot] Updates channel closed")
				b.closeQueues()
				return
			}
			b.dispatch(ctx, &wg, update)
		}
	}
}

// HandleUpdate handles one update synchronously. Run serializes calls per
// chat; direct callers must do the same.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.Text == "" {
		return
	}

	key := "update:" + strconv.Itoa(update.UpdateID)
	if b.Dedupe != nil && b.Dedupe.IsProcessed(ctx, key) {
		slog.Debug("[Bot] Skipping duplicate update", slog.Int("update_id", update.UpdateID))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Bot] Panic while handling update",
				slog.Int("update_id", update.UpdateID),
				slog.String("panic", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())))
			b.reply(msg.Chat.ID, errorText, nil)
		}
	}()

	b.handleMessage(ctx, msg)

	if b.Dedupe != nil {
		if err := b.Dedupe.MarkProcessed(ctx, key); err != nil {
			slog.Warn("[Bot] Failed to mark update processed",
				slog.Int("update_id", update.UpdateID),
				slog.String("error", err.Error()))
		}
	}
}

// reply renders markdown to Telegram HTML and sends it.
func (b *Bot) reply(chatID int64, markdown string, markup any) {
	b.sendHTML(chatID, render.TelegramHTML(markdown), markup)
}

func (b *Bot) sendHTML(chatID int64, html string, markup any) {
	msg := tgbotapi.NewMessage(chatID, render.Truncate(html, render.MaxMessageLength))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := b.Sender.Send(msg); err != nil {
		slog.Error("[Bot] Failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()))
	}
}

// SendReminder asks the user for today's mood and waits for a score.
func (b *Bot) SendReminder(_ context.Context, userID int64) error {
	msg := tgbotapi.NewMessage(userID, render.TelegramHTML(reminderText))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = moodKeyboard()

	if _, err := b.Sender.Send(msg); err != nil {
		return fmt.Errorf("[Bot] failed to send reminder: %w", err)
	}
	b.states.Set(userID, StateMoodInput)
	return nil
}
