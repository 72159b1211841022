package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/spacesedan/mindmate/internal/chat"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/ratelimit"
)

// parseCommand splits "/chat@MindMateBot coach" into "chat" and "coach".
func parseCommand(text string) (command, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, args, _ := strings.Cut(strings.TrimSpace(text[1:]), " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args), head != ""
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	user, err := b.Store.UpsertUser(ctx, models.User{
		TelegramID: msg.From.ID,
		Username:   msg.From.UserName,
		FirstName:  msg.From.FirstName,
	})
	if err != nil {
		slog.Error("[Bot] Failed to upsert user",
			slog.Int64("user_id", msg.From.ID),
			slog.String("error", err.Error()))
		b.reply(chatID, errorText, nil)
		return
	}

	if mapped, ok := menuCommands[text]; ok {
		text = mapped
	}

	if command, args, ok := parseCommand(text); ok {
		slog.Debug("[Bot] Command received",
			slog.Int64("chat_id", chatID),
			slog.String("command", command))
		b.handleCommand(ctx, chatID, user, command, args)
		return
	}

	if exercise, ok := exercises[text]; ok {
		b.states.Set(chatID, StateExercise)
		b.reply(chatID, exercise, exercisesKeyboard())
		return
	}

	switch b.states.Get(chatID) {
	case StateMoodInput:
		b.handleMoodInput(ctx, chatID, user, text)
	case StateAIChat:
		b.handleAIChat(ctx, chatID, user, text)
	default:
		b.states.Set(chatID, StateMainMenu)
		b.handleFreeText(ctx, chatID, user, text)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, user models.User, command, args string) {
	switch command {
	case "start":
		b.leaveChat(ctx, chatID, user.TelegramID)
		name := user.FirstName
		if name == "" {
			name = "друг"
		}
		b.reply(chatID, fmt.Sprintf(welcomeText, escapeMarkdown(name)), mainKeyboard())
	case "menu":
		b.leaveChat(ctx, chatID, user.TelegramID)
		b.reply(chatID, menuText, mainKeyboard())
	case "help":
		b.reply(chatID, helpText, nil)
	case "crisis":
		b.reply(chatID, crisisText, nil)
	case "mood":
		b.states.Set(chatID, StateMoodInput)
		b.reply(chatID, moodPromptText, moodKeyboard())
	case "stats":
		b.handleStats(ctx, chatID, user.TelegramID)
	case "chat", "ai":
		b.handleStartChat(ctx, chatID, user.TelegramID, args)
	case "stop":
		b.handleStopChat(ctx, chatID, user.TelegramID)
	case "exercises":
		b.states.Set(chatID, StateExercise)
		b.reply(chatID, exercisesIntroText, exercisesKeyboard())
	case "reminders":
		b.handleReminders(ctx, chatID, user.TelegramID, args)
	default:
		b.reply(chatID, unknownCommandText, nil)
	}
}

// leaveChat ends an active AI conversation when the user navigates away.
func (b *Bot) leaveChat(ctx context.Context, chatID, userID int64) {
	if b.states.Get(chatID) == StateAIChat {
		if _, err := b.Chat.End(ctx, userID); err != nil && !errors.Is(err, chat.ErrNoSession) {
			slog.Warn("[Bot] Failed to end chat session",
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
		}
	}
	b.states.Set(chatID, StateMainMenu)
}

func (b *Bot) handleFreeText(ctx context.Context, chatID int64, user models.User, text string) {
	analysis := b.Analyzer.Analyze(text)

	if analysis.IsCrisis {
		slog.Warn("[Bot] Crisis keywords detected",
			slog.Int64("user_id", user.TelegramID),
			slog.Int("crisis_words", len(analysis.CrisisWords)))
		b.reply(chatID, crisisText, nil)
	}

	if _, err := b.Store.AddMoodLog(ctx, models.MoodLog{
		UserID:   user.TelegramID,
		Message:  text,
		Analysis: &analysis,
	}); err != nil {
		slog.Error("[Bot] Failed to save mood log",
			slog.Int64("user_id", user.TelegramID),
			slog.String("error", err.Error()))
	}

	b.reply(chatID, analysisReply(analysis), nil)

	if analysis.Sentiment.Label == models.SentimentError {
		return
	}
	b.publish(ctx, user.TelegramID, analysis)
	if b.Archive != nil {
		b.Archive.Archive(user.TelegramID, analysis)
	}
}

func (b *Bot) publish(ctx context.Context, userID int64, analysis models.Analysis) {
	if b.Publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := models.AnalysisEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Analysis:  analysis,
		CreatedAt: b.now().UTC(),
	}
	if err := b.Publisher.PublishAnalysis(ctx, event); err != nil {
		slog.Warn("[Bot] Failed to publish analysis event",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// parseMoodScore accepts "7" as well as keyboard buttons like "7 👍".
func parseMoodScore(text string) (int, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	score, err := strconv.Atoi(fields[0])
	if err != nil || score < 1 || score > 10 {
		return 0, false
	}
	return score, true
}

func (b *Bot) handleMoodInput(ctx context.Context, chatID int64, user models.User, text string) {
	score, ok := parseMoodScore(text)
	if !ok {
		b.reply(chatID, moodInvalidText, moodKeyboard())
		return
	}

	if _, err := b.Store.AddMoodLog(ctx, models.MoodLog{
		UserID:    user.TelegramID,
		MoodScore: &score,
	}); err != nil {
		slog.Error("[Bot] Failed to save mood score",
			slog.Int64("user_id", user.TelegramID),
			slog.String("error", err.Error()))
		b.reply(chatID, errorText, mainKeyboard())
		b.states.Set(chatID, StateMainMenu)
		return
	}

	b.states.Set(chatID, StateMainMenu)
	b.reply(chatID, moodSavedReply(score), mainKeyboard())
}

func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	stats, err := b.Store.UserStats(ctx, userID)
	if err != nil {
		slog.Error("[Bot] Failed to load stats",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		b.reply(chatID, errorText, nil)
		return
	}
	b.reply(chatID, statsReply(stats, b.Location), nil)
}

func (b *Bot) handleStartChat(ctx context.Context, chatID, userID int64, args string) {
	if !b.Chat.Available() {
		b.reply(chatID, chatUnavailableText, nil)
		return
	}

	session, err := b.Chat.Start(ctx, userID, chat.ParseMode(args))
	if err != nil {
		slog.Error("[Bot] Failed to start chat",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		b.reply(chatID, chatUnavailableText, nil)
		return
	}

	b.states.Set(chatID, StateAIChat)
	b.reply(chatID, chatStartedReply(session.Mode), chatKeyboard())
}

func (b *Bot) handleStopChat(ctx context.Context, chatID, userID int64) {
	b.states.Set(chatID, StateMainMenu)

	session, err := b.Chat.End(ctx, userID)
	if errors.Is(err, chat.ErrNoSession) {
		b.reply(chatID, chatNoSessionText, mainKeyboard())
		return
	}
	if err != nil {
		slog.Error("[Bot] Failed to end chat",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		b.reply(chatID, errorText, mainKeyboard())
		return
	}

	b.reply(chatID, chatEndedReply(session), mainKeyboard())
}

func (b *Bot) handleAIChat(ctx context.Context, chatID int64, user models.User, text string) {
	if analysis := b.Analyzer.Analyze(text); analysis.IsCrisis {
		slog.Warn("[Bot] Crisis keywords detected in AI chat",
			slog.Int64("user_id", user.TelegramID))
		b.reply(chatID, crisisText, nil)
	}

	if err := ratelimit.Enforce(ctx, b.Limiter, user.TelegramID); err != nil {
		b.reply(chatID, rateLimitedText, nil)
		return
	}

	reply, err := b.Chat.Send(ctx, user.TelegramID, text)
	switch {
	case errors.Is(err, chat.ErrNoSession):
		b.states.Set(chatID, StateMainMenu)
		b.reply(chatID, chatNoSessionText, mainKeyboard())
	case errors.Is(err, chat.ErrUnavailable):
		b.reply(chatID, chatUnavailableText, nil)
	case err != nil:
		slog.Error("[Bot] Chat completion failed",
			slog.Int64("user_id", user.TelegramID),
			slog.String("error", err.Error()))
		b.reply(chatID, chatFailedText, nil)
	default:
		b.sendHTML(chatID, reply.Text, nil)
	}
}

func (b *Bot) handleReminders(ctx context.Context, chatID, userID int64, args string) {
	var enabled bool
	switch strings.ToLower(args) {
	case "on", "вкл":
		enabled = true
	case "off", "выкл":
		enabled = false
	default:
		b.reply(chatID, remindersUsageText, nil)
		return
	}

	if err := b.Store.SetReminders(ctx, userID, enabled); err != nil {
		slog.Error("[Bot] Failed to update reminders",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		b.reply(chatID, errorText, nil)
		return
	}

	if enabled {
		b.reply(chatID, remindersOnText, nil)
	} else {
		b.reply(chatID, remindersOffText, nil)
	}
}
