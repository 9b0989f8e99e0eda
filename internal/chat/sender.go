package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/rs/zerolog/log"
)

// FallbackReply is appended in place of an AI reply that failed or never
// arrived.
const FallbackReply = "I apologize, but I'm having trouble generating a response right now. Please try again."

var (
	// ErrNotAuthenticated rejects a send without a user session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSendInFlight rejects a send while another one has not finished.
	ErrSendInFlight = errors.New("a message send is already in progress")
	// ErrMessageLimit rejects a send into a conversation that reached the
	// message cap.
	ErrMessageLimit = fmt.Errorf("conversation has reached the %d-message limit", domain.MaxMessagesPerConversation)
)

// Navigator is how the orchestrator tells the surrounding UI to move to a
// conversation it just created.
type Navigator interface {
	NavigateToConversation(hash string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(hash string)

func (f NavigatorFunc) NavigateToConversation(hash string) { f(hash) }

// SenderConfig carries the pacing knobs of the deferred reply flow. Zero
// values fall back to the UX defaults; tests shrink them to keep runs fast.
type SenderConfig struct {
	// ReplyDelay is the pause between inserting the loading placeholder
	// and requesting the AI reply.
	ReplyDelay time.Duration
	// MedicinePacing is the pause before the first supplementary
	// recommendation and between consecutive ones, so they drip in
	// rather than land all at once.
	MedicinePacing time.Duration
}

const (
	defaultReplyDelay     = 500 * time.Millisecond
	defaultMedicinePacing = time.Second
)

// Sender coordinates sending one user message end to end: preconditions,
// conversation creation, optimistic local insert, remote persistence, and
// the deferred AI-reply reconciliation.
//
// A single in-flight flag serializes all sends regardless of target
// conversation. That is a deliberate restriction, not an oversight: the flag
// is held from the first precondition check until the asynchronous
// reconciliation finishes.
type Sender struct {
	store  *Store
	client backend.Client
	nav    Navigator
	cfg    SenderConfig

	mu        sync.Mutex
	inFlight  bool
	currentID string
}

// NewSender creates a send orchestrator over the given store and backend.
// nav may be nil when the surrounding UI has no routing surface.
func NewSender(store *Store, client backend.Client, nav Navigator, cfg SenderConfig) *Sender {
	if cfg.ReplyDelay == 0 {
		cfg.ReplyDelay = defaultReplyDelay
	}
	if cfg.MedicinePacing == 0 {
		cfg.MedicinePacing = defaultMedicinePacing
	}
	return &Sender{store: store, client: client, nav: nav, cfg: cfg}
}

// CurrentConversation returns the id of the selected conversation, or "".
func (s *Sender) CurrentConversation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// SetCurrentConversation selects a conversation; pass "" for a fresh chat.
func (s *Sender) SetCurrentConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentID = id
}

// Send runs the full message flow. It returns once the user message is
// persisted and the loading placeholder is visible locally; the AI reply is
// reconciled afterward on its own goroutine. The returned channel closes
// when that reconciliation (success, failure, or fallback) has completed
// and the in-flight guard has been released.
//
// Preconditions are checked in order before any network call: a session must
// exist, no other send may be in flight, and the selected conversation must
// be under the message cap. Each rejection is a sentinel error.
func (s *Sender) Send(ctx context.Context, user *domain.UserSession, content string) (<-chan struct{}, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}
	s.inFlight = true
	currentID := s.currentID
	s.mu.Unlock()

	if currentID != "" {
		if conv, ok := s.store.Get(currentID); ok && conv.AtMessageLimit() {
			s.release()
			return nil, ErrMessageLimit
		}
	}

	log.Debug().
		Int("user_id", user.UserID).
		Str("current_conversation", currentID).
		Msg("starting message send")

	activeID, err := s.ensureConversation(ctx, user.UserID, currentID, content)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	// Optimistic insert: the user message is visible before the backend
	// confirms persistence.
	s.store.AppendMessage(activeID, domain.NewUserMessage(content))

	if err := s.client.AddMessage(ctx, activeID, domain.RoleUser, content); err != nil {
		// The optimistic message stays; no rollback, no AI call.
		s.release()
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.store.AppendMessage(activeID, domain.NewLoadingPlaceholder())

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer s.release()

		// UX pacing, not a correctness requirement.
		timer := time.NewTimer(s.cfg.ReplyDelay)
		defer timer.Stop()
		<-timer.C

		s.reconcileReply(ctx, activeID)
	}()

	return done, nil
}

// ensureConversation reuses the current conversation when it is confirmed to
// exist remotely, and otherwise creates a new one keyed by a fresh hash.
func (s *Sender) ensureConversation(ctx context.Context, userID int, currentID, content string) (string, error) {
	if currentID != "" && s.store.KnownInBackend(currentID) {
		return currentID, nil
	}

	hash := NewConversationHash()
	title := domain.DeriveTitle(content)

	if err := s.client.CreateConversation(ctx, hash, userID, title); err != nil {
		return "", err
	}

	s.store.MarkKnown(hash)
	s.SetCurrentConversation(hash)
	if s.nav != nil {
		s.nav.NavigateToConversation(hash)
	}
	s.store.UpsertIfMissing(domain.NewConversation(hash, content))

	log.Info().Str("conversation", hash).Msg("conversation created")
	return hash, nil
}

// reconcileReply swaps the loading placeholder for the real AI reply, or for
// the fixed fallback when the reply fails. Never propagates an error; the
// session is never fatal over a bad reply.
func (s *Sender) reconcileReply(ctx context.Context, conversationID string) {
	reply, err := s.client.GetAIResponse(ctx, conversationID)

	s.store.RemoveLoadingPlaceholders(conversationID)

	if err != nil {
		log.Error().Err(err).Str("conversation", conversationID).Msg("AI reply failed")
		s.store.AppendMessage(conversationID, domain.NewBotMessage(FallbackReply))
		return
	}

	s.store.AppendMessage(conversationID, domain.NewBotMessage(reply.Response))

	for _, medicine := range reply.Medicines {
		timer := time.NewTimer(s.cfg.MedicinePacing)
		<-timer.C
		timer.Stop()
		s.store.AppendMessage(conversationID, domain.NewBotMessage(medicine))
	}
}

func (s *Sender) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
