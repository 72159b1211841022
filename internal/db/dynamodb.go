package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/spacesedan/mindmate/internal/models"
	"github.com/spacesedan/mindmate/internal/utils"
)

const (
	ANALYSIS_ARCHIVE_TABLE_NAME = "MoodAnalyses"

	maxBatchWriteItems  = 25 // BatchWriteItem limit
	archiveFlushTimeout = 5 * time.Second
	archiveRecordTTL    = 30 * 24 * time.Hour
	unprocessedRetries  = 3
	maxArchiveBacklog   = 1000
)

// BatchWriter is the part of the DynamoDB client the archive needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// AnalysisArchive buffers analysis records and writes them to DynamoDB in
// batches, either when the buffer fills or on a timer.
type AnalysisArchive struct {
	client  BatchWriter
	table   string
	buffer  *utils.BatchBuffer[models.AnalysisRecord]
	full    chan struct{}
	backoff time.Duration
	now     func() time.Time
}

func NewAnalysisArchive(client BatchWriter, table string) *AnalysisArchive {
	if table == "" {
		table = ANALYSIS_ARCHIVE_TABLE_NAME
	}
	return &AnalysisArchive{
		client:  client,
		table:   table,
		buffer:  utils.NewBatchBuffer[models.AnalysisRecord](maxBatchWriteItems),
		full:    make(chan struct{}, 1),
		backoff: 500 * time.Millisecond,
		now:     time.Now,
	}
}

func NewAnalysisRecord(userID int64, analysis models.Analysis, now time.Time) models.AnalysisRecord {
	return models.AnalysisRecord{
		RecordID:    uuid.NewString(),
		UserID:      userID,
		Sentiment:   string(analysis.Sentiment.Label),
		StressLevel: analysis.StressLevel,
		Topics:      analysis.TopicNames(),
		IsCrisis:    analysis.IsCrisis,
		CrisisWords: analysis.CrisisWords,
		WordCount:   analysis.Metrics.WordCount,
		CreatedAt:   now.UTC(),
		ExpiresAt:   now.Add(archiveRecordTTL).Unix(),
	}
}

// AnalysisRecordFromEvent keys the record by the event id, so a redelivered
// event overwrites its earlier copy.
func AnalysisRecordFromEvent(event models.AnalysisEvent) models.AnalysisRecord {
	record := NewAnalysisRecord(event.UserID, event.Analysis, event.CreatedAt)
	if event.EventID != "" {
		record.RecordID = event.EventID
	}
	return record
}

// Archive queues the analysis. It never blocks on DynamoDB.
func (a *AnalysisArchive) Archive(userID int64, analysis models.Analysis) {
	if a.buffer.Add(NewAnalysisRecord(userID, analysis, a.now())) {
		select {
		case a.full <- struct{}{}:
		default:
		}
	}
}

// Run flushes the buffer until ctx is done, then makes one last flush.
func (a *AnalysisArchive) Run(ctx context.Context) {
	ticker := time.NewTicker(archiveFlushTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := a.Flush(shutdownCtx); err != nil {
				slog.Error("[DynamoDB] Final archive flush failed",
					slog.String("error", err.Error()))
			}
			cancel()
			slog.Info("[DynamoDB] Analysis archive stopped")
			return
		case <-ticker.C:
		case <-a.full:
		}

		if err := a.Flush(ctx); err != nil {
			slog.Error("[DynamoDB] Archive flush failed",
				slog.String("error", err.Error()))
		}
	}
}

// Flush drains the buffer and writes it. Records from a failed write go
// back into the buffer, keeping at most maxArchiveBacklog of the newest.
// Records from chunks that did succeed are rewritten with the same key.
func (a *AnalysisArchive) Flush(ctx context.Context) error {
	records := a.buffer.GetAndClear()
	err := a.Write(ctx, records)
	if err != nil {
		a.requeue(records)
	}
	return err
}

func (a *AnalysisArchive) requeue(records []models.AnalysisRecord) {
	if over := a.buffer.Size() + len(records) - maxArchiveBacklog; over > 0 {
		slog.Warn("[DynamoDB] Archive backlog full, dropping oldest records",
			slog.Int("dropped", min(over, len(records))))
		records = records[min(over, len(records)):]
	}
	for _, r := range records {
		a.buffer.Add(r)
	}
}

// Write stores records directly, in chunks of 25.
func (a *AnalysisArchive) Write(ctx context.Context, records []models.AnalysisRecord) error {
	if len(records) == 0 {
		return nil
	}

	for i := 0; i < len(records); i += maxBatchWriteItems {
		end := min(i+maxBatchWriteItems, len(records))
		if err := a.writeBatch(ctx, records[i:end]); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored analysis records",
		slog.Int("count", len(records)))
	return nil
}

func (a *AnalysisArchive) writeBatch(ctx context.Context, records []models.AnalysisRecord) error {
	writeRequests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to marshal analysis record: %w", err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{
				Item: item,
			},
		})
	}

	out, err := a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			a.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write analysis records: %w", err)
	}

	retryCount := 0
	backoff := a.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < unprocessedRetries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed analysis records...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[a.table])))

		out, err = a.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}

		retryCount++
	}

	if remaining := len(out.UnprocessedItems[a.table]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d analysis records not written after retries", remaining)
	}
	return nil
}
