package kafka_client

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/mindmate/internal/clients/kafka_client/utils"
	"github.com/spacesedan/mindmate/internal/models"
)

// AnalysisProducer publishes analysis events keyed by user id so that one
// user's events stay ordered within a partition.
type AnalysisProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewAnalysisProducer(cfg KafkaConfig) (*AnalysisProducer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker),
		slog.String("topic", cfg.Topic))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT", // Force PLAINTEXT
		"api.version.request":                   "true",      // Ensure correct API version request
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &AnalysisProducer{producer: p, topic: cfg.Topic}, nil
}

func (ap *AnalysisProducer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := ap.producer.Flush(FLUSH_TIMEOUT); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	ap.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishAnalysis produces the event and waits for its delivery report.
func (ap *AnalysisProducer) PublishAnalysis(ctx context.Context, event models.AnalysisEvent) error {
	jsonData, err := utils.SerializeToJSON(event)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal analysis event: %w", err)
	}

	topic := ap.topic
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatInt(event.UserID, 10)),
		Value:          jsonData,
	}

	var lastErr error
	for i := 0; i < MAX_RETRIES; i++ {
		lastErr = ap.produce(ctx, msg)
		if lastErr == nil {
			slog.Debug("[KafkaClient] Published analysis event",
				slog.String("topic", topic),
				slog.String("event_id", event.EventID))
			return nil
		}

		if kafkaErr, ok := lastErr.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaClient] All Kafka brokers are down. Aborting publish")
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", lastErr.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RETRY_DELAY):
		}
	}

	return fmt.Errorf("[KafkaClient] failed to publish after %d retries: %w", MAX_RETRIES, lastErr)
}

func (ap *AnalysisProducer) produce(ctx context.Context, msg *kafka.Message) error {
	deliveryChan := make(chan kafka.Event, 1)
	if err := ap.producer.Produce(msg, deliveryChan); err != nil {
		return err
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event: %v", e)
		}
		return m.TopicPartition.Error
	case <-time.After(DELIVERY_LIMIT):
		return fmt.Errorf("[KafkaClient] delivery report timed out")
	case <-ctx.Done():
		return ctx.Err()
	}
}
