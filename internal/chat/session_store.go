package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/spacesedan/mindmate/internal/models"
)

const (
	sessionKeyPrefix = "mindmate:chat_session:"
	sessionTTL       = 24 * time.Hour
)

// SessionStore keeps at most one active session per user.
type SessionStore interface {
	Load(ctx context.Context, userID int64) (models.ChatSession, error)
	Save(ctx context.Context, session models.ChatSession) error
	Delete(ctx context.Context, userID int64) error
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]models.ChatSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]models.ChatSession)}
}

func (m *MemorySessionStore) Load(_ context.Context, userID int64) (models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return models.ChatSession{}, ErrNoSession
	}
	s.Messages = append([]models.ChatMessage(nil), s.Messages...)
	return s, nil
}

func (m *MemorySessionStore) Save(_ context.Context, session models.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.Messages = append([]models.ChatMessage(nil), session.Messages...)
	m.sessions[session.UserID] = session
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// KV is the subset of the valkey client used for sessions.
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// ValkeySessionStore stores sessions as JSON with a sliding TTL, so
// abandoned conversations expire on their own.
type ValkeySessionStore struct {
	kv KV
}

func NewValkeySessionStore(kv KV) *ValkeySessionStore {
	return &ValkeySessionStore{kv: kv}
}

func sessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

func (v *ValkeySessionStore) Load(ctx context.Context, userID int64) (models.ChatSession, error) {
	raw, found, err := v.kv.Get(ctx, sessionKey(userID))
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("[ChatSessions] failed to load session: %w", err)
	}
	if !found {
		return models.ChatSession{}, ErrNoSession
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return models.ChatSession{}, fmt.Errorf("[ChatSessions] failed to decode session: %w", err)
	}
	return session, nil
}

func (v *ValkeySessionStore) Save(ctx context.Context, session models.ChatSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("[ChatSessions] failed to encode session: %w", err)
	}
	if err := v.kv.Set(ctx, sessionKey(session.UserID), string(raw), sessionTTL); err != nil {
		return fmt.Errorf("[ChatSessions] failed to save session: %w", err)
	}
	return nil
}

func (v *ValkeySessionStore) Delete(ctx context.Context, userID int64) error {
	if err := v.kv.Delete(ctx, sessionKey(userID)); err != nil {
		return fmt.Errorf("[ChatSessions] failed to delete session: %w", err)
	}
	return nil
}
