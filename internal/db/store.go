package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/mindmate/internal/clients"
	"github.com/spacesedan/mindmate/internal/models"
)

const (
	recentLogsLimit   = 5
	recentMessageSize = 50
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidMoodScore = errors.New("mood score must be between 1 and 10")
)

// Store persists users and their mood journal.
type Store interface {
	Migrate(ctx context.Context) error
	UpsertUser(ctx context.Context, user models.User) (models.User, error)
	AddMoodLog(ctx context.Context, log models.MoodLog) (models.MoodLog, error)
	UserStats(ctx context.Context, userID int64) (models.UserStats, error)
	SetReminders(ctx context.Context, userID int64, enabled bool) error
	ReminderSubscribers(ctx context.Context) ([]int64, error)
	Close() error
}

// Open picks a backend from the database URL and runs its migrations.
// An empty URL selects the in-memory store.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	var (
		store Store
		err   error
	)

	switch {
	case databaseURL == "":
		slog.Warn("[DB] DATABASE_URL not set, mood journal is kept in memory")
		store = NewMemoryStore()
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		pg, pgErr := clients.NewPostgresClient(ctx, databaseURL)
		if pgErr != nil {
			return nil, pgErr
		}
		store = NewPostgresStore(pg)
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasSuffix(databaseURL, ".db"):
		store, err = OpenSQLite(sqlitePath(databaseURL))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("[DB] unsupported database url scheme: %q", databaseURL)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func sqlitePath(databaseURL string) string {
	return strings.TrimPrefix(databaseURL, "sqlite://")
}

func validateMoodScore(score *int) error {
	if score == nil {
		return nil
	}
	if *score < 1 || *score > 10 {
		return ErrInvalidMoodScore
	}
	return nil
}

func truncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= recentMessageSize {
		return message
	}
	return string(runes[:recentMessageSize]) + "..."
}

func stressOf(a *models.Analysis) *int {
	if a == nil || a.Sentiment.Label == models.SentimentError {
		return nil
	}
	v := a.StressLevel
	return &v
}

func crisisOf(a *models.Analysis) bool {
	return a != nil && a.IsCrisis
}
