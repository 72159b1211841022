package models

import "time"

type User struct {
	TelegramID       int64     `json:"telegram_id"`
	Username         string    `json:"username,omitempty"`
	FirstName        string    `json:"first_name,omitempty"`
	RemindersEnabled bool      `json:"reminders_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	LastActive       time.Time `json:"last_active"`
}

// MoodLog is a single journal entry. MoodScore is set for explicit /mood
// ratings, Analysis for free-text messages.
type MoodLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MoodScore *int      `json:"mood_score,omitempty"`
	Message   string    `json:"message,omitempty"`
	Analysis  *Analysis `json:"analysis,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStats struct {
	TotalRecords int       `json:"total_records"`
	AvgMood      *float64  `json:"avg_mood,omitempty"`
	AvgStress    *float64  `json:"avg_stress,omitempty"`
	CrisisCount  int       `json:"crisis_count"`
	RecentLogs   []MoodLog `json:"recent_logs"`
}
