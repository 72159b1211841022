package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/mindmate/config"
	"github.com/spacesedan/mindmate/internal/clients"
	"github.com/spacesedan/mindmate/internal/clients/kafka_client"
	"github.com/spacesedan/mindmate/internal/consumers"
	"github.com/spacesedan/mindmate/internal/db"
	"github.com/spacesedan/mindmate/internal/logging"
)

// Copies analysis events published by the bot into the DynamoDB archive.
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

	if settings.KafkaBroker == "" {
		slog.Error("[Main] KAFKA_BROKER is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := clients.GetAWSConfig(ctx, settings.AWSRegion)
	if err != nil {
		slog.Error("[Main] Failed to load AWS config",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	archive := db.NewAnalysisArchive(
		clients.NewDynamoDBClient(awsCfg, settings.AWSEndpoint), settings.DynamoAnalysisTable)

	cfg := kafka_client.NewKafkaConfig(settings.KafkaBroker, settings.KafkaAnalysisTopic).
		WithGroupID(settings.KafkaGroupID)

	consumer, err := kafka_client.NewAnalysisConsumer(cfg)
	for err != nil {
		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
		consumer, err = kafka_client.NewAnalysisConsumer(cfg)
	}
	defer consumer.Close()

	consumers.NewArchiveConsumer(
		kafka_client.NewKafkaMessageIterator(ctx, consumer),
		// not ctx: the final flush on shutdown still has to commit
		kafka_client.NewCommitHandler(context.Background(), consumer),
		archive,
	).Run(ctx)
}
