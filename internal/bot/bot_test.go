package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/mindmate/internal/chat"
	"github.com/spacesedan/mindmate/internal/db"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/ratelimit"
	"github.com/spacesedan/mindmate/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

func (f *fakeSender) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

type echoCompleter struct{}

func (echoCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "**Держись!**"}},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

type recordingPublisher struct {
	events []models.AnalysisEvent
}

func (r *recordingPublisher) PublishAnalysis(_ context.Context, e models.AnalysisEvent) error {
	r.events = append(r.events, e)
	return nil
}

type recordingArchive struct {
	users []int64
}

func (r *recordingArchive) Archive(userID int64, _ models.Analysis) {
	r.users = append(r.users, userID)
}

type memoryDeduper struct {
	seen map[string]bool
}

func (m *memoryDeduper) IsProcessed(_ context.Context, key string) bool { return m.seen[key] }

func (m *memoryDeduper) MarkProcessed(_ context.Context, key string) error {
	m.seen[key] = true
	return nil
}

type testBot struct {
	*Bot
	sender    *fakeSender
	store     *db.MemoryStore
	publisher *recordingPublisher
	archive   *recordingArchive
	nextID    int
}

func newTestBot(t *testing.T, completer chat.Completer) *testBot {
	t.Helper()

	sender := &fakeSender{}
	store := db.NewMemoryStore()
	publisher := &recordingPublisher{}
	archive := &recordingArchive{}

	b := New(Deps{
		Sender:    sender,
		Analyzer:  sentiment.NewAnalyzer(sentiment.DefaultLexicon(), sentiment.WithPolarityScorer(nil)),
		Store:     store,
		Chat:      chat.NewService(completer, chat.NewMemorySessionStore(), "deepseek-chat"),
		Limiter:   ratelimit.NewMemoryLimiter(2, time.Minute),
		Publisher: publisher,
		Archive:   archive,
	})
	return &testBot{Bot: b, sender: sender, store: store, publisher: publisher, archive: archive}
}

const userID int64 = 1001

func (tb *testBot) say(text string) {
	tb.nextID++
	tb.HandleUpdate(context.Background(), textUpdate(tb.nextID, userID, text))
}

func textUpdate(id int, from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: from, FirstName: "Анна", UserName: "anna"},
			Chat: &tgbotapi.Chat{ID: from},
			Text: text,
		},
	}
}

func TestStart(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("/start")

	msg := tb.sender.last()
	assert.Contains(t, msg.Text, "MindMate, Анна")
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, msg.ReplyMarkup)
}

func TestFreeText_AnalyzesAndPersists(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("Сегодня отличный день, я счастлив и рад")

	texts := tb.sender.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Позитивный настрой")
	assert.Contains(t, texts[0], "Рекомендации")

	stats, err := tb.store.UserStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecords)

	require.Len(t, tb.publisher.events, 1)
	assert.Equal(t, userID, tb.publisher.events[0].UserID)
	assert.NotEmpty(t, tb.publisher.events[0].EventID)
	assert.Equal(t, []int64{userID}, tb.archive.users)
}

func TestFreeText_CrisisSendsContactsFirst(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("Мне очень плохо, не хочу жить")

	texts := tb.sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "ЭКСТРЕННАЯ ПОМОЩЬ")
	assert.Contains(t, texts[1], "Обнаружены тревожные сигналы")

	stats, err := tb.store.UserStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CrisisCount)
}

func TestFreeText_ShortMessage(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("ok")

	text := tb.sender.last().Text
	assert.Contains(t, text, "Нейтральный настрой")
	assert.Contains(t, text, "слишком короткий")
}

func TestMoodFlow(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})

	tb.say("📊 Настроение")
	assert.Contains(t, tb.sender.last().Text, "Оцените ваше настроение")
	assert.Equal(t, StateMoodInput, tb.states.Get(userID))

	tb.say("много")
	assert.Contains(t, tb.sender.last().Text, "число от 1 до 10")
	assert.Equal(t, StateMoodInput, tb.states.Get(userID))

	tb.say("7 👍")
	assert.Contains(t, tb.sender.last().Text, "Настроение 7/10 записано")
	assert.Equal(t, StateMainMenu, tb.states.Get(userID))

	stats, err := tb.store.UserStats(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stats.AvgMood)
	assert.InDelta(t, 7.0, *stats.AvgMood, 0.001)

	tb.say("/stats")
	assert.Contains(t, tb.sender.last().Text, "Среднее настроение: 7.0/10")
}

func TestAIChatFlow(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})

	tb.say("/chat coach")
	assert.Contains(t, tb.sender.last().Text, "Коуч")
	assert.Equal(t, StateAIChat, tb.states.Get(userID))

	tb.say("Как перестать откладывать дела?")
	assert.Equal(t, "<b>Держись!</b>", tb.sender.last().Text)

	tb.say("А если не получается?")
	assert.Equal(t, "<b>Держись!</b>", tb.sender.last().Text)

	tb.say("Еще вопрос")
	assert.Contains(t, tb.sender.last().Text, "Слишком много сообщений")

	tb.say("/stop")
	assert.Contains(t, tb.sender.last().Text, "Сообщений: 2")
	assert.Equal(t, StateMainMenu, tb.states.Get(userID))

	tb.say("/stop")
	assert.Contains(t, tb.sender.last().Text, "Диалог с ИИ не начат")
}

func TestAIChat_CrisisStillDetected(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("/ai")
	tb.sender.reset()

	tb.say("кажется, нет выхода")
	texts := tb.sender.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "ЭКСТРЕННАЯ ПОМОЩЬ")
	assert.Equal(t, "<b>Держись!</b>", texts[1])
}

func TestAIChat_Unavailable(t *testing.T) {
	tb := newTestBot(t, nil)
	tb.say("/chat")

	assert.Contains(t, tb.sender.last().Text, "недоступен")
	assert.Equal(t, StateMainMenu, tb.states.Get(userID))
}

func TestUnknownCommand(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("/dance")
	assert.Contains(t, tb.sender.last().Text, "Я не понял эту команду")
}

func TestExercises(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})

	tb.say("/exercises")
	assert.Equal(t, StateExercise, tb.states.Get(userID))

	tb.say(btnBreathing)
	assert.Contains(t, tb.sender.last().Text, "Дыхание 4-7-8")

	tb.say(btnBack)
	assert.Equal(t, StateMainMenu, tb.states.Get(userID))
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	tb := newTestBot(t, echoCompleter{})

	tb.say("/reminders")
	assert.Contains(t, tb.sender.last().Text, "/reminders on")

	tb.say("/reminders off")
	assert.Contains(t, tb.sender.last().Text, "выключены")
	ids, err := tb.store.ReminderSubscribers(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	tb.say("/reminders on")
	ids, err = tb.store.ReminderSubscribers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{userID}, ids)
}

func TestSendReminder_WaitsForScore(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.say("/start")

	require.NoError(t, tb.SendReminder(context.Background(), userID))
	assert.Contains(t, tb.sender.last().Text, "check-in")
	assert.Equal(t, StateMoodInput, tb.states.Get(userID))

	tb.say("9")
	assert.Contains(t, tb.sender.last().Text, "Настроение 9/10 записано")
}

func TestDuplicateUpdatesAreSkipped(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.Dedupe = &memoryDeduper{seen: map[string]bool{}}

	update := textUpdate(77, userID, "/help")
	tb.HandleUpdate(context.Background(), update)
	tb.HandleUpdate(context.Background(), update)

	assert.Len(t, tb.sender.texts(), 1)
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(string) models.Analysis { panic("boom") }

func TestPanicIsReportedToUser(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.Analyzer = panickingAnalyzer{}

	tb.say("просто текст")
	assert.Contains(t, tb.sender.last().Text, "Произошла ошибка")
}

func TestRun_StopsWhenChannelCloses(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})

	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate(1, 1, "/help")
	updates <- textUpdate(2, 2, "/crisis")
	close(updates)

	done := make(chan struct{})
	go func() {
		tb.Run(context.Background(), updates)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Len(t, tb.sender.texts(), 2)
}

type orderedAnalyzer struct {
	mu    sync.Mutex
	texts []string
	next  Analyzer
}

func (a *orderedAnalyzer) Analyze(text string) models.Analysis {
	a.mu.Lock()
	a.texts = append(a.texts, text)
	a.mu.Unlock()
	return a.next.Analyze(text)
}

func (a *orderedAnalyzer) seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.texts...)
}

func TestRun_HandlesChatUpdatesInOrder(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	analyzer := &orderedAnalyzer{next: tb.Analyzer}
	tb.Analyzer = analyzer

	const n = 300
	updates := make(chan tgbotapi.Update, n)
	want := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		text := fmt.Sprintf("сообщение номер %d", i)
		want = append(want, text)
		updates <- textUpdate(i, userID, text)
	}
	close(updates)

	tb.Run(context.Background(), updates)

	assert.Equal(t, want, analyzer.seen())
	assert.Len(t, tb.sender.texts(), n)
}

func TestRun_IdleChatWorkerExits(t *testing.T) {
	tb := newTestBot(t, echoCompleter{})
	tb.idleTimeout = 10 * time.Millisecond

	updates := make(chan tgbotapi.Update)
	done := make(chan struct{})
	go func() {
		tb.Run(context.Background(), updates)
		close(done)
	}()

	workers := func() int {
		tb.queuesMu.Lock()
		defer tb.queuesMu.Unlock()
		return len(tb.queues)
	}

	updates <- textUpdate(1, userID, "/help")
	assert.Eventually(t, func() bool { return workers() == 0 }, time.Second, 5*time.Millisecond)

	updates <- textUpdate(2, userID, "/crisis")
	assert.Eventually(t, func() bool { return len(tb.sender.texts()) == 2 }, time.Second, 5*time.Millisecond)

	close(updates)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    string
		ok      bool
	}{
		{"/start", "start", "", true},
		{"/chat coach", "chat", "coach", true},
		{"/Chat@MindMateBot  friend ", "chat", "friend", true},
		{"привет", "", "", false},
		{"/", "", "", false},
	}

	for _, tt := range tests {
		command, args, ok := parseCommand(tt.text)
		assert.Equal(t, tt.command, command, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
	}
}

func TestParseMoodScore(t *testing.T) {
	for text, want := range map[string]int{"1": 1, "7 👍": 7, " 10 😍": 10} {
		got, ok := parseMoodScore(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}
	for _, text := range []string{"", "0", "11", "семь", "-3"} {
		_, ok := parseMoodScore(text)
		assert.False(t, ok, text)
	}
}

func TestStatsReply_EscapesUserText(t *testing.T) {
	score := 4
	stats := models.UserStats{
		TotalRecords: 1,
		AvgMood:      func() *float64 { v := 4.0; return &v }(),
		RecentLogs: []models.MoodLog{{
			MoodScore: &score,
			Message:   "*не* _курсив_",
			CreatedAt: time.Date(2025, 3, 8, 9, 30, 0, 0, time.UTC),
		}},
	}

	reply := statsReply(stats, time.UTC)
	assert.Contains(t, reply, `\*не\* \_курсив\_`)
	assert.Contains(t, reply, "08.03 09:30")
	assert.True(t, strings.HasPrefix(reply, "📊"))
}
