package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, _ := l.Allow(ctx, 1)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, 2)
	assert.True(t, ok, "limits are per user")

	now = now.Add(61 * time.Second)
	ok, _ = l.Allow(ctx, 1)
	assert.True(t, ok)
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestValkeyLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	counter := &fakeCounter{counts: map[string]int64{}}
	now := time.Date(2025, 1, 1, 10, 0, 5, 0, time.UTC)
	l := NewValkeyLimiter(counter, 2, time.Minute)
	l.now = func() time.Time { return now }

	ok, err := l.Allow(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, 1)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, 1)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, 1)
	assert.True(t, ok)
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(1, time.Minute)

	assert.NoError(t, Enforce(ctx, l, 1))
	assert.ErrorIs(t, Enforce(ctx, l, 1), ErrLimited)

	failing := NewValkeyLimiter(&fakeCounter{err: errors.New("down")}, 1, time.Minute)
	assert.NoError(t, Enforce(ctx, failing, 1))
}
