package domain

import "time"

// MaxMessagesPerConversation caps how many messages (user and bot combined)
// a single conversation may hold. Further sends are rejected until a new
// conversation is started.
const MaxMessagesPerConversation = 20

// TitleMaxLen is how much of the initiating message becomes the title.
const TitleMaxLen = 50

// DefaultTitle is used when a conversation has no messages to derive from.
const DefaultTitle = "New Conversation"

// Conversation is a chat thread. ID is the client-generated conversation
// hash, which doubles as the backend's lookup key once persisted.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AtMessageLimit reports whether the conversation can accept no more sends.
func (c Conversation) AtMessageLimit() bool {
	return len(c.Messages) >= MaxMessagesPerConversation
}

// DeriveTitle produces a conversation title from its first user message:
// the first 50 characters of the content.
func DeriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) > TitleMaxLen {
		return string(runes[:TitleMaxLen])
	}
	return content
}

// NewConversation builds an empty conversation titled after the message that
// is about to start it.
func NewConversation(id, content string) Conversation {
	now := time.Now()
	return Conversation{
		ID:        id,
		Title:     DeriveTitle(content),
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
