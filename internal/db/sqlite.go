package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/mindmate/internal/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id       INTEGER PRIMARY KEY,
	username          TEXT NOT NULL DEFAULT '',
	first_name        TEXT NOT NULL DEFAULT '',
	reminders_enabled INTEGER NOT NULL DEFAULT 1,
	created_at        INTEGER NOT NULL,
	last_active       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mood_logs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id      INTEGER NOT NULL REFERENCES users (telegram_id) ON DELETE CASCADE,
	mood_score   INTEGER CHECK (mood_score BETWEEN 1 AND 10),
	user_message TEXT NOT NULL DEFAULT '',
	analysis     TEXT,
	stress_level INTEGER,
	is_crisis    INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_mood_logs_user_created ON mood_logs (user_id, created_at DESC);
`

// SQLiteStore is the embedded backend. Timestamps are stored as unix
// nanoseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to open sqlite database: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	slog.Info("[DB] Opened SQLite database", slog.String("path", path))
	return &SQLiteStore{db: conn, now: time.Now}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("[DB] failed to migrate sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	now := s.now().UnixNano()

	const query = `
		INSERT INTO users (telegram_id, username, first_name, created_at, last_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = excluded.username,
		    first_name = excluded.first_name,
		    last_active = excluded.last_active
		RETURNING reminders_enabled, created_at, last_active`

	var (
		reminders           int
		created, lastActive int64
	)
	err := s.db.QueryRowContext(ctx, query, user.TelegramID, user.Username, user.FirstName, now, now).
		Scan(&reminders, &created, &lastActive)
	if err != nil {
		return models.User{}, fmt.Errorf("[DB] failed to upsert user: %w", err)
	}

	user.RemindersEnabled = reminders != 0
	user.CreatedAt = time.Unix(0, created).UTC()
	user.LastActive = time.Unix(0, lastActive).UTC()
	return user, nil
}

func (s *SQLiteStore) AddMoodLog(ctx context.Context, log models.MoodLog) (models.MoodLog, error) {
	if err := validateMoodScore(log.MoodScore); err != nil {
		return models.MoodLog{}, err
	}

	var analysisJSON sql.NullString
	if log.Analysis != nil {
		raw, err := json.Marshal(log.Analysis)
		if err != nil {
			return models.MoodLog{}, fmt.Errorf("[DB] failed to marshal analysis: %w", err)
		}
		analysisJSON = sql.NullString{String: string(raw), Valid: true}
	}

	var score, stress sql.NullInt64
	if log.MoodScore != nil {
		score = sql.NullInt64{Int64: int64(*log.MoodScore), Valid: true}
	}
	if st := stressOf(log.Analysis); st != nil {
		stress = sql.NullInt64{Int64: int64(*st), Valid: true}
	}

	created := s.now()
	const query = `
		INSERT INTO mood_logs (user_id, mood_score, user_message, analysis, stress_level, is_crisis, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM users WHERE telegram_id = ?)`

	res, err := s.db.ExecContext(ctx, query,
		log.UserID, score, log.Message, analysisJSON, stress, crisisOf(log.Analysis), created.UnixNano(), log.UserID)
	if err != nil {
		return models.MoodLog{}, fmt.Errorf("[DB] failed to insert mood log: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.MoodLog{}, fmt.Errorf("[DB] failed to insert mood log: %w", err)
	}
	if affected == 0 {
		return models.MoodLog{}, ErrNotFound
	}

	if log.ID, err = res.LastInsertId(); err != nil {
		return models.MoodLog{}, fmt.Errorf("[DB] failed to read mood log id: %w", err)
	}
	log.CreatedAt = created.UTC()
	return log, nil
}

func (s *SQLiteStore) UserStats(ctx context.Context, userID int64) (models.UserStats, error) {
	var (
		stats              models.UserStats
		avgMood, avgStress sql.NullFloat64
	)

	const aggregate = `
		SELECT COUNT(*),
		       AVG(mood_score),
		       AVG(stress_level),
		       COALESCE(SUM(is_crisis), 0)
		FROM mood_logs
		WHERE user_id = ?`

	err := s.db.QueryRowContext(ctx, aggregate, userID).
		Scan(&stats.TotalRecords, &avgMood, &avgStress, &stats.CrisisCount)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to aggregate mood logs: %w", err)
	}
	if avgMood.Valid {
		stats.AvgMood = &avgMood.Float64
	}
	if avgStress.Valid {
		stats.AvgStress = &avgStress.Float64
	}

	const recent = `
		SELECT id, mood_score, user_message, created_at
		FROM mood_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, recent, userID, recentLogsLimit)
	if err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to query recent mood logs: %w", err)
	}
	defer rows.Close()

	stats.RecentLogs = make([]models.MoodLog, 0, recentLogsLimit)
	for rows.Next() {
		l := models.MoodLog{UserID: userID}
		var (
			score   sql.NullInt64
			created int64
		)
		if err := rows.Scan(&l.ID, &score, &l.Message, &created); err != nil {
			return models.UserStats{}, fmt.Errorf("[DB] failed to scan mood log: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			l.MoodScore = &v
		}
		l.Message = truncateMessage(l.Message)
		l.CreatedAt = time.Unix(0, created).UTC()
		stats.RecentLogs = append(stats.RecentLogs, l)
	}
	if err := rows.Err(); err != nil {
		return models.UserStats{}, fmt.Errorf("[DB] failed to read mood logs: %w", err)
	}

	return stats, nil
}

func (s *SQLiteStore) SetReminders(ctx context.Context, userID int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET reminders_enabled = ? WHERE telegram_id = ?`, enabled, userID)
	if err != nil {
		return fmt.Errorf("[DB] failed to update reminders: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("[DB] failed to update reminders: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ReminderSubscribers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT telegram_id FROM users WHERE reminders_enabled = 1 ORDER BY telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to query reminder subscribers: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("[DB] failed to scan reminder subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
