package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

var ErrLimited = errors.New("rate limit exceeded")

// Limiter admits at most a fixed number of requests per user per window.
type Limiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// Enforce returns ErrLimited when the user is over the limit. Limiter
// failures are logged and the request is let through.
func Enforce(ctx context.Context, l Limiter, userID int64) error {
	ok, err := l.Allow(ctx, userID)
	if err != nil {
		slog.Warn("[RateLimiter] Limiter unavailable, allowing request",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return ErrLimited
	}
	return nil
}

// MemoryLimiter is a sliding window kept in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	requests map[int64][]time.Time
	now      func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:      limit,
		window:   window,
		requests: make(map[int64][]time.Time),
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)

	recent := m.requests[userID][:0]
	for _, t := range m.requests[userID] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= m.max {
		m.requests[userID] = recent
		return false, nil
	}
	m.requests[userID] = append(recent, now)
	return true, nil
}

// Counter is the subset of the valkey client used by ValkeyLimiter.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ValkeyLimiter is a fixed window shared by every bot replica.
type ValkeyLimiter struct {
	counter Counter
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewValkeyLimiter(counter Counter, limit int, window time.Duration) *ValkeyLimiter {
	return &ValkeyLimiter{
		counter: counter,
		max:     limit,
		window:  window,
		now:     time.Now,
	}
}

func (v *ValkeyLimiter) key(userID int64) string {
	bucket := v.now().UnixNano() / int64(v.window)
	return "mindmate:ratelimit:" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(bucket, 10)
}

func (v *ValkeyLimiter) Allow(ctx context.Context, userID int64) (bool, error) {
	count, err := v.counter.Incr(ctx, v.key(userID), v.window)
	if err != nil {
		return false, fmt.Errorf("[RateLimiter] failed to increment counter: %w", err)
	}
	return count <= int64(v.max), nil
}
