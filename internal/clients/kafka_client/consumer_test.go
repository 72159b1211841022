package kafka_client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReader struct {
	errs  []error
	msg   *kafka.Message
	calls int
}

func (r *scriptedReader) ReadMessage(time.Duration) (*kafka.Message, error) {
	r.calls++
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return nil, err
	}
	return r.msg, nil
}

func TestIterator_RetriesTransientErrors(t *testing.T) {
	msg := &kafka.Message{Value: []byte("x")}
	reader := &scriptedReader{errs: []error{errors.New("blip"), errors.New("blip")}, msg: msg}
	it := NewKafkaMessageIterator(context.Background(), reader)
	it.retryDelay = time.Millisecond

	got, err := it.Next()
	require.NoError(t, err)
	assert.Same(t, msg, got)
	assert.Equal(t, 3, reader.calls)
}

func TestIterator_TimeoutIsNotAnError(t *testing.T) {
	reader := &scriptedReader{errs: []error{kafka.NewError(kafka.ErrTimedOut, "timed out", false)}}
	it := NewKafkaMessageIterator(context.Background(), reader)

	got, err := it.Next()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIterator_AbortsWhenBrokersDown(t *testing.T) {
	reader := &scriptedReader{errs: []error{kafka.NewError(kafka.ErrAllBrokersDown, "down", false)}}
	it := NewKafkaMessageIterator(context.Background(), reader)

	_, err := it.Next()
	require.Error(t, err)
	assert.Equal(t, 1, reader.calls)
}

func TestIterator_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewKafkaMessageIterator(ctx, &scriptedReader{}).Next()
	assert.ErrorIs(t, err, context.Canceled)
}

type scriptedCommitter struct {
	failures int
	calls    int
}

func (c *scriptedCommitter) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	c.calls++
	if c.failures > 0 {
		c.failures--
		return nil, errors.New("rebalance in progress")
	}
	return []kafka.TopicPartition{m.TopicPartition}, nil
}

func TestCommitHandler_Retries(t *testing.T) {
	committer := &scriptedCommitter{failures: 2}
	ch := NewCommitHandler(context.Background(), committer)
	ch.retryDelay = time.Millisecond

	require.NoError(t, ch.Commit(&kafka.Message{}))
	assert.Equal(t, 3, committer.calls)
}

func TestCommitHandler_GivesUp(t *testing.T) {
	committer := &scriptedCommitter{failures: MAX_RETRIES}
	ch := NewCommitHandler(context.Background(), committer)
	ch.retryDelay = time.Millisecond

	require.Error(t, ch.Commit(&kafka.Message{}))
	assert.Equal(t, MAX_RETRIES, committer.calls)
}

func TestKafkaConfig(t *testing.T) {
	cfg := NewKafkaConfig("localhost:9092", "")
	assert.Equal(t, KAFKA_TOPIC_MOOD_ANALYSIS, cfg.Topic)
	assert.Equal(t, DEFAULT_GROUP_ID, cfg.GroupID)
	assert.Equal(t, "archive-2", cfg.WithGroupID("archive-2").GroupID)
	assert.Equal(t, DEFAULT_GROUP_ID, cfg.WithGroupID("").GroupID)
}
