package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/spacesedan/mindmate/internal/clients"
	"github.com/spacesedan/mindmate/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id       BIGINT PRIMARY KEY,
	username          VARCHAR(100),
	first_name        VARCHAR(100),
	reminders_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_active       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS mood_logs (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL REFERENCES users (telegram_id) ON DELETE CASCADE,
	mood_score   INTEGER CHECK (mood_score BETWEEN 1 AND 10),
	user_message TEXT NOT NULL DEFAULT '',
	analysis     JSONB,
	stress_level INTEGER,
	is_crisis    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_mood_logs_user_created ON mood_logs (user_id, created_at DESC);
`

type PostgresStore struct {
	pg clients.Postgres
}

func NewPostgresStore(pg clients.Postgres) *PostgresStore {
	return &PostgresStore{pg: pg}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pg.DB.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("[DB] failed to migrate postgres schema: %w", err)
	}
	slog.Info("[DB] PostgreSQL schema ready")
	return nil
}

func (s *PostgresStore) Close() error {
	s.pg.Close()
	return nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (telegram_id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_active = NOW()
		RETURNING reminders_enabled, created_at, last_active`

	err := s.pg.DB.QueryRow(ctx, query, user.TelegramID, user.Username, user.FirstName).
		Scan(&user.RemindersEnabled, &user.CreatedAt, &user.LastActive)
	if err != nil {
		return models.User{}, fmt.Errorf("[DB] failed to upsert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) AddMoodLog(ctx context.Context, log models.MoodLog) (models.MoodLog, error) {
	if err := validateMoodScore(log.MoodScore); err != nil {
		return models.MoodLog{}, err
	}

	var analysisJSON any
	if log.Analysis != nil {
		raw, err := json.Marshal(log.Analysis)
		if err != nil {
			return models.MoodLog{}, fmt.Errorf("[DB] failed to marshal analysis: %w", err)
		}
		analysisJSON = string(raw)
	}

	const query = `
		INSERT INTO mood_logs (user_id, mood_score, user_message, analysis, stress_level, is_crisis)
		SELECT $1::bigint, $2::integer, $3::text, $4::jsonb, $5::integer, $6::boolean
		WHERE EXISTS (SELECT 1 FROM users WHERE telegram_id = $1::bigint)
		RETURNING id, created_at`

	err := s.pg.DB.QueryRow(ctx, query,
		log.UserID, log.MoodScore, log.Message, analysisJSON, stressOf(log.Analysis), crisisOf(log.Analysis)).
		Scan(&log.ID, &log.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MoodLog{}, ErrNotFound
	}
	if err != nil {
		return models.MoodLog{}, fmt.Errorf("[DB] failed to insert mood log: %w", err)
	}
	return log, nil
}

func (s *PostgresStore) UserStats(ctx context.Context, userID int64) (models.UserStats, error) {
	var stats models.UserStats

	const aggregate = `
		SELECT COUNT(*),
		       AVG(mood_score)::float8,
		       AVG(stress_level)::float8,
		       COUNT(*) FILTER (WHERE is_crisis)
		FROM mood_logs
		WHERE user_id = $1`

	err := s.pg.DB.QueryRow(ctx, aggregate, userID).
		Scan(&stats.TotalRecords, &stats.AvgMood, &stats.AvgStress, &stats.CrisisCount)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to aggregate mood logs: %w", err)
	}

	const recent = `
		SELECT id, mood_score, user_message, created_at
		FROM mood_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := s.pg.DB.Query(ctx, recent, userID, recentLogsLimit)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to query recent mood logs: %w", err)
	}
	defer rows.Close()

	stats.RecentLogs = make([]models.MoodLog, 0, recentLogsLimit)
	for rows.Next() {
		l := models.MoodLog{UserID: userID}
		if err := rows.Scan(&l.ID, &l.MoodScore, &l.Message, &l.CreatedAt); err != nil {
			return models.UserStats{}, fmt.Errorf("[DB] failed to scan mood log: %w", err)
		}
		l.Message = truncateMessage(l.Message)
		stats.RecentLogs = append(stats.RecentLogs, l)
	}
	if err := rows.Err(); err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to read mood logs: %w", err)
	}

	return stats, nil
}

func (s *PostgresStore) SetReminders(ctx context.Context, userID int64, enabled bool) error {
	tag, err := s.pg.DB.Exec(ctx,
		`UPDATE users SET reminders_enabled = $2 WHERE telegram_id = $1`, userID, enabled)
	if err != nil {
		return fmt.Errorf("[DB] failed to update reminders: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ReminderSubscribers(ctx context.Context) ([]int64, error) {
	rows, err := s.pg.DB.Query(ctx,
		`SELECT telegram_id FROM users WHERE reminders_enabled ORDER BY telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to query reminder subscribers: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to read reminder subscribers: %w", err)
	}
	return ids, nil
}
