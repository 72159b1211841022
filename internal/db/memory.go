package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spacesedan/mindmate/internal/models"
)

// MemoryStore keeps everything in process memory. Data is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	logs   []models.MoodLog
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]models.User),
		now:   time.Now,
	}
}

func (m *MemoryStore) Migrate(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) UpsertUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	existing, ok := m.users[user.TelegramID]
	if !ok {
		user.CreatedAt = now
		user.LastActive = now
		user.RemindersEnabled = true
		m.users[user.TelegramID] = user
		return user, nil
	}

	existing.Username = user.Username
	existing.FirstName = user.FirstName
	existing.LastActive = now
	m.users[user.TelegramID] = existing
	return existing, nil
}

func (m *MemoryStore) AddMoodLog(_ context.Context, log models.MoodLog) (models.MoodLog, error) {
	if err := validateMoodScore(log.MoodScore); err != nil {
		return models.MoodLog{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[log.UserID]; !ok {
		return models.MoodLog{}, ErrNotFound
	}

	m.nextID++
	log.ID = m.nextID
	log.CreatedAt = m.now().UTC()
	m.logs = append(m.logs, log)
	return log, nil
}

func (m *MemoryStore) UserStats(_ context.Context, userID int64) (models.UserStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		stats                  models.UserStats
		moodSum, stressSum     float64
		moodCount, stressCount int
		userLogs               []models.MoodLog
	)

	for _, l := range m.logs {
		if l.UserID != userID {
			continue
		}
		stats.TotalRecords++
		userLogs = append(userLogs, l)

		if l.MoodScore != nil {
			moodSum += float64(*l.MoodScore)
			moodCount++
		}
		if s := stressOf(l.Analysis); s != nil {
			stressSum += float64(*s)
			stressCount++
		}
		if crisisOf(l.Analysis) {
			stats.CrisisCount++
		}
	}

	if moodCount > 0 {
		avg := moodSum / float64(moodCount)
		stats.AvgMood = &avg
	}
	if stressCount > 0 {
		avg := stressSum / float64(stressCount)
		stats.AvgStress = &avg
	}

	sort.SliceStable(userLogs, func(i, j int) bool {
		if userLogs[i].CreatedAt.Equal(userLogs[j].CreatedAt) {
			return userLogs[i].ID > userLogs[j].ID
		}
		return userLogs[i].CreatedAt.After(userLogs[j].CreatedAt)
	})

	stats.RecentLogs = make([]models.MoodLog, 0, recentLogsLimit)
	for i, l := range userLogs {
		if i == recentLogsLimit {
			break
		}
		stats.RecentLogs = append(stats.RecentLogs, models.MoodLog{
			ID:        l.ID,
			UserID:    l.UserID,
			MoodScore: l.MoodScore,
			Message:   truncateMessage(l.Message),
			CreatedAt: l.CreatedAt,
		})
	}

	return stats, nil
}

func (m *MemoryStore) SetReminders(_ context.Context, userID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.RemindersEnabled = enabled
	m.users[userID] = user
	return nil
}

func (m *MemoryStore) ReminderSubscribers(context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.users))
	for id, u := range m.users {
		if u.RemindersEnabled {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
