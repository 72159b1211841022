package models

import "time"

type ChatMode string

const (
	ChatModePsychologist ChatMode = "psychologist"
	ChatModeCoach        ChatMode = "coach"
	ChatModeFriend       ChatMode = "friend"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ChatSession struct {
	ID            string        `json:"id"`
	UserID        int64         `json:"user_id"`
	Mode          ChatMode      `json:"mode"`
	Messages      []ChatMessage `json:"messages"`
	MessageCount  int           `json:"message_count"`
	TokenCount    int           `json:"token_count"`
	TotalCost     float64       `json:"total_cost"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	LastMessageAt time.Time     `json:"last_message_at,omitempty"`
}
