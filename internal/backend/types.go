package backend

import (
	"encoding/json"
	"net/http"
	"time"
)

// statusResponse is the generic {success, error} envelope used by the
// write endpoints.
type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// wireMessage is a message as the backend serves it. message_id arrives as a
// number and is stringified on the client side.
type wireMessage struct {
	MessageID json.Number `json:"message_id"`
	Sender    string      `json:"sender"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
}

type getConversationResponse struct {
	Success  bool          `json:"success"`
	Messages []wireMessage `json:"messages"`
	Error    string        `json:"error,omitempty"`
}

type wireConversation struct {
	ConversationID string  `json:"conversation_id"`
	Title          string  `json:"title"`
	StartedAt      string  `json:"started_at"`
	EndedAt        *string `json:"ended_at"`
}

type getUserConversationsResponse struct {
	Success       bool               `json:"success"`
	Conversations []wireConversation `json:"conversations"`
	Error         string             `json:"error,omitempty"`
}

type aiResponse struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response"`
	Medicines []string `json:"medicines,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type authResponse struct {
	Name   string `json:"name"`
	UserID int    `json:"user_id"`
	Error  string `json:"error,omitempty"`
}

// ConversationSummary is one entry of a user's conversation listing.
type ConversationSummary struct {
	ID        string
	Title     string
	StartedAt time.Time
	EndedAt   *time.Time
}

// AIReply is a successful answer from the AI endpoint: the response text plus
// optional supplementary medicine recommendations.
type AIReply struct {
	Response  string
	Medicines []string
}

// wireTimeFormats covers the timestamp renderings seen from the backend:
// RFC 3339 from JSON-native serializers and the HTTP date formats Flask-style
// servers emit for datetime columns.
var wireTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02 15:04:05",
}

// parseWireTime parses a backend timestamp leniently, falling back to the
// current time when nothing matches.
func parseWireTime(s string) time.Time {
	for _, layout := range wireTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
