package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spacesedan/mindmate/config"
	"github.com/spacesedan/mindmate/internal/bot"
	"github.com/spacesedan/mindmate/internal/chat"
	"github.com/spacesedan/mindmate/internal/clients"
	"github.com/spacesedan/mindmate/internal/clients/kafka_client"
	"github.com/spacesedan/mindmate/internal/db"
	"github.com/spacesedan/mindmate/internal/logging"
	"github.com/spacesedan/mindmate/internal/monitoring"
	"github.com/spacesedan/mindmate/internal/ratelimit"
	"github.com/spacesedan/mindmate/internal/reminders"
	"github.com/spacesedan/mindmate/internal/sentiment"
)

const updatesTimeout = 60

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.Debug)

	if err := settings.Validate(); err != nil {
		slog.Error("[Main] Invalid configuration",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lexicon := sentiment.DefaultLexicon()
	if settings.LexiconPath != "" {
		if lexicon, err = sentiment.LoadLexicon(settings.LexiconPath); err != nil {
			slog.Error("[Main] Failed to load lexicon",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	analyzer := sentiment.NewAnalyzer(lexicon)

	store, err := db.Open(ctx, settings.DatabaseURL)
	if err != nil {
		slog.Error("[Main] Failed to open database",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	deps := bot.Deps{
		Analyzer: analyzer,
		Store:    store,
		Location: settings.ReminderLocation,
	}

	var sessions chat.SessionStore = chat.NewMemorySessionStore()
	deps.Limiter = ratelimit.NewMemoryLimiter(settings.RateLimitRequests, settings.RateLimitWindow)

	if settings.ValkeyAddress != "" {
		valkey, err := clients.NewValkeyClient(clients.ValkeyOptions{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPassword,
			UseTLS:   settings.ValkeyTLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, keeping state in memory",
				slog.String("error", err.Error()))
		} else {
			defer valkey.Close()
			sessions = chat.NewValkeySessionStore(valkey)
			deps.Limiter = ratelimit.NewValkeyLimiter(valkey, settings.RateLimitRequests, settings.RateLimitWindow)
			deps.Dedupe = valkey
		}
	}

	var completer chat.Completer
	var chatOpts []chat.Option
	if settings.ChatEnabled() {
		deepseek := clients.NewDeepSeekClient(settings.DeepSeekAPIKey, settings.DeepSeekBaseURL, settings.DeepSeekModel)
		chatHealthy := &atomic.Bool{}
		chatHealthy.Store(true)
		go monitoring.MonitorChatHealth(ctx, chatHealthy, deepseek)

		completer = deepseek
		chatOpts = append(chatOpts, chat.WithHealth(chatHealthy))
	} else {
		slog.Warn("[Main] DEEPSEEK_API_KEY not set, AI chat disabled")
	}
	deps.Chat = chat.NewService(completer, sessions, settings.DeepSeekModel, chatOpts...)

	if settings.KafkaBroker != "" {
		producer, err := kafka_client.NewAnalysisProducer(
			kafka_client.NewKafkaConfig(settings.KafkaBroker, settings.KafkaAnalysisTopic))
		if err != nil {
			slog.Warn("[Main] Kafka producer disabled",
				slog.String("error", err.Error()))
		} else {
			defer producer.Close()
			deps.Publisher = producer
		}
	}

	var wg sync.WaitGroup
	if settings.DynamoAnalysisTable != "" {
		awsCfg, err := clients.GetAWSConfig(ctx, settings.AWSRegion)
		if err != nil {
			slog.Warn("[Main] DynamoDB archive disabled",
				slog.String("error", err.Error()))
		} else {
			archive := db.NewAnalysisArchive(
				clients.NewDynamoDBClient(awsCfg, settings.AWSEndpoint), settings.DynamoAnalysisTable)
			wg.Add(1)
			go func() {
				defer wg.Done()
				archive.Run(ctx)
			}()
			deps.Archive = archive
		}
	}

	api, err := tgbotapi.NewBotAPI(settings.TelegramToken)
	if err != nil {
		slog.Error("[Main] Failed to connect to Telegram",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	api.Debug = settings.Debug
	deps.Sender = api
	slog.Info("[Main] Authorized on Telegram",
		slog.String("username", api.Self.UserName))

	mindmate := bot.New(deps)

	scheduler := reminders.NewScheduler(store, mindmate, settings.ReminderHour, settings.ReminderLocation)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updatesTimeout
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	mindmate.Run(ctx, updates)
	wg.Wait()
	slog.Info("[Main] Shutdown complete")
}
