package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/mindmate/internal/clients/kafka_client/utils"
	"github.com/spacesedan/mindmate/internal/db"
	"github.com/spacesedan/mindmate/internal/models"
	batching "github.com/spacesedan/mindmate/internal/utils"
)

const (
	ARCHIVE_BATCH_SIZE    = 25
	ARCHIVE_BATCH_TIMEOUT = 5 * time.Second
	shutdownFlushTimeout  = 10 * time.Second
)

type MessageSource interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

type RecordWriter interface {
	Write(ctx context.Context, records []models.AnalysisRecord) error
}

// ArchiveConsumer copies analysis events from Kafka into the archive.
// Offsets are committed only after the records before them are stored,
// so a crash replays events instead of losing them.
type ArchiveConsumer struct {
	source    MessageSource
	committer Committer
	writer    RecordWriter
	buffer    *batching.BatchBuffer[models.AnalysisRecord]
	offsets   *utils.OffsetTracker
	interval  time.Duration
}

func NewArchiveConsumer(source MessageSource, committer Committer, writer RecordWriter) *ArchiveConsumer {
	return &ArchiveConsumer{
		source:    source,
		committer: committer,
		writer:    writer,
		buffer:    batching.NewBatchBuffer[models.AnalysisRecord](ARCHIVE_BATCH_SIZE),
		offsets:   utils.NewOffsetTracker(),
		interval:  ARCHIVE_BATCH_TIMEOUT,
	}
}

func (c *ArchiveConsumer) Run(ctx context.Context) {
	slog.Info("[ArchiveConsumer] Listening for analysis events...")

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[ArchiveConsumer] Stopping consumer...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			c.flush(shutdownCtx)
			cancel()
			return
		case <-ticker.C:
			c.flush(ctx)
		default:
			msg, err := c.source.Next()
			if err != nil {
				utils.HandleConsumerError(err)
				continue
			}
			if msg == nil {
				continue
			}
			if c.handle(msg) {
				c.flush(ctx)
			}
		}
	}
}

// handle buffers the event and reports whether the batch is full.
// Undecodable messages are skipped but still committed with the batch.
func (c *ArchiveConsumer) handle(msg *kafka.Message) bool {
	c.offsets.Track(msg)

	event, err := utils.DecodeMessage[models.AnalysisEvent](msg)
	if err != nil {
		return false
	}
	return c.buffer.Add(db.AnalysisRecordFromEvent(event))
}

func (c *ArchiveConsumer) flush(ctx context.Context) {
	records := c.buffer.GetAndClear()
	if len(records) == 0 && c.offsets.Len() == 0 {
		return
	}

	if err := c.writer.Write(ctx, records); err != nil {
		slog.Error("[ArchiveConsumer] Failed to archive records, keeping them for the next flush",
			slog.Int("count", len(records)),
			slog.String("error", err.Error()))
		for _, r := range records {
			c.buffer.Add(r)
		}
		return
	}

	for _, msg := range c.offsets.Drain() {
		if err := c.committer.Commit(msg); err != nil {
			slog.Warn("[ArchiveConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}
