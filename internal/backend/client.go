package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/domain"
)

// Client is the typed surface of the remote CarePoint backend. The
// conversation store and send orchestrator depend on this interface, not on
// the HTTP implementation.
type Client interface {
	CreateConversation(ctx context.Context, hash string, userID int, title string) error
	AddMessage(ctx context.Context, hash string, sender domain.MessageRole, message string) error
	GetConversation(ctx context.Context, hash string) ([]domain.Message, error)
	GetUserConversations(ctx context.Context, userID int) ([]ConversationSummary, error)
	EndConversation(ctx context.Context, hash string) error
	GetAIResponse(ctx context.Context, hash string) (*AIReply, error)
	Login(ctx context.Context, email, password string) (*domain.UserSession, error)
	Signup(ctx context.Context, name, email, password string) (*domain.UserSession, error)
}

// HTTPClient implements Client against the plain-HTTP backend contract.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a backend client. Timeout behavior is whatever the
// underlying HTTP client carries; this layer adds none of its own.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateConversation offers a client-generated hash to the backend as the
// key for a new conversation. The backend is the authority on uniqueness.
func (c *HTTPClient) CreateConversation(ctx context.Context, hash string, userID int, title string) error {
	payload := map[string]any{
		"conversation_hash": hash,
		"user_id":           userID,
		"title":             title,
	}

	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, "/createConversation", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return backendError("failed to create conversation", resp.Error)
	}
	return nil
}

// AddMessage persists one message to a conversation.
func (c *HTTPClient) AddMessage(ctx context.Context, hash string, sender domain.MessageRole, message string) error {
	payload := map[string]any{
		"conversation_hash": hash,
		"sender":            string(sender),
		"message":           message,
	}

	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodPost, "/addMessage", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return backendError("failed to save message", resp.Error)
	}
	return nil
}

// GetConversation fetches the full message history of one conversation, in
// chronological order.
func (c *HTTPClient) GetConversation(ctx context.Context, hash string) ([]domain.Message, error) {
	var resp getConversationResponse
	if err := c.doJSON(ctx, http.MethodGet, "/getConversation/"+hash, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendError("failed to load conversation", resp.Error)
	}

	messages := make([]domain.Message, len(resp.Messages))
	for i, m := range resp.Messages {
		messages[i] = domain.Message{
			ID:        m.MessageID.String(),
			Role:      domain.MessageRole(m.Sender),
			Content:   m.Message,
			Timestamp: parseWireTime(m.Timestamp),
		}
	}
	return messages, nil
}

// GetUserConversations lists a user's conversations in the backend's order.
func (c *HTTPClient) GetUserConversations(ctx context.Context, userID int) ([]ConversationSummary, error) {
	var resp getUserConversationsResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/getUserConversations/%d", userID), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, backendError("failed to list conversations", resp.Error)
	}

	summaries := make([]ConversationSummary, len(resp.Conversations))
	for i, conv := range resp.Conversations {
		s := ConversationSummary{
			ID:        conv.ConversationID,
			Title:     conv.Title,
			StartedAt: parseWireTime(conv.StartedAt),
		}
		if conv.EndedAt != nil && *conv.EndedAt != "" {
			ended := parseWireTime(*conv.EndedAt)
			s.EndedAt = &ended
		}
		summaries[i] = s
	}
	return summaries, nil
}

// EndConversation marks a conversation ended. The backend answers with an
// HTTP status only.
func (c *HTTPClient) EndConversation(ctx context.Context, hash string) error {
	payload := map[string]any{"conversation_hash": hash}

	req, err := c.newRequest(ctx, http.MethodPut, "/endConversation", payload)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to end conversation: backend returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// GetAIResponse requests an AI reply for the conversation. The backend reads
// the history it already holds; only the hash travels.
func (c *HTTPClient) GetAIResponse(ctx context.Context, hash string) (*AIReply, error) {
	payload := map[string]any{"conversation_hash": hash}

	var resp aiResponse
	if err := c.doJSON(ctx, http.MethodPost, "/getAIResponse", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Response == "" {
		return nil, backendError("AI response failed", resp.Error)
	}
	return &AIReply{Response: resp.Response, Medicines: resp.Medicines}, nil
}

// Login authenticates a user.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*domain.UserSession, error) {
	payload := map[string]any{"email": email, "password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/loginUser", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return &domain.UserSession{UserID: resp.UserID, UserName: resp.Name, Email: email}, nil
}

// Signup registers a user.
func (c *HTTPClient) Signup(ctx context.Context, name, email, password string) (*domain.UserSession, error) {
	payload := map[string]any{"name": name, "email": email, "password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/signupUser", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	return &domain.UserSession{UserID: resp.UserID, UserName: resp.Name, Email: email}, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// doJSON executes a request and decodes the JSON body into out. Non-2xx
// responses with a decodable body still decode, so backend-reported failures
// ({success:false, error} and {error} shapes) surface as such rather than as
// bare status codes.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("backend returned HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func backendError(context, detail string) error {
	if detail == "" {
		return errors.New(context)
	}
	return fmt.Errorf("%s: %s", context, detail)
}
