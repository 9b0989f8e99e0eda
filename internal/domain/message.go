package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)

// LoadingIDPrefix marks transient placeholder messages that stand in for a
// bot reply that has not arrived yet.
const LoadingIDPrefix = "loading-"

// Message represents a single chat message inside a conversation.
// Server-issued messages carry a stringified numeric id; locally fabricated
// messages carry a time-derived or random id.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// IsLoadingPlaceholder reports whether the message is a transient "..."
// indicator rather than a real message.
func (m Message) IsLoadingPlaceholder() bool {
	return strings.HasPrefix(m.ID, LoadingIDPrefix)
}

// NewUserMessage builds an optimistic user message with a time-derived id.
func NewUserMessage(content string) Message {
	now := time.Now()
	return Message{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Role:      RoleUser,
		Content:   content,
		Timestamp: now,
	}
}

// NewBotMessage builds a locally fabricated bot message.
func NewBotMessage(content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      RoleBot,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewLoadingPlaceholder builds the transient "..." indicator inserted while
// an AI reply is in flight.
func NewLoadingPlaceholder() Message {
	now := time.Now()
	return Message{
		ID:        LoadingIDPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		Role:      RoleBot,
		Content:   "...",
		Timestamp: now,
	}
}
