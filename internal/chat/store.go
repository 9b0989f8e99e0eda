package chat

import (
	"context"
	"sync"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for the conversations visible to the
// user and for which conversation ids are confirmed to exist in the backend.
// It is constructed at session start and passed by reference to the sender
// and the presentation layer; neither holds private copies of its state.
//
// Deferred reply reconciliation runs on its own goroutine, so all state is
// mutex-guarded.
type Store struct {
	client backend.Client

	mu            sync.Mutex
	conversations []domain.Conversation
	known         map[string]struct{}
}

// NewStore creates an empty conversation store backed by the given client.
func NewStore(client backend.Client) *Store {
	return &Store{
		client: client,
		known:  make(map[string]struct{}),
	}
}

// UpsertIfMissing inserts conv at the front of the collection only if no
// conversation with that id is already present. Idempotent.
func (s *Store) UpsertIfMissing(conv domain.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == conv.ID {
			return
		}
	}
	s.conversations = append([]domain.Conversation{conv}, s.conversations...)
}

// UpdateByID applies updater to the one conversation matching id; no effect
// when absent. Every other mutation goes through this primitive.
func (s *Store) UpdateByID(id string, updater func(*domain.Conversation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateByIDLocked(id, updater)
}

func (s *Store) updateByIDLocked(id string, updater func(*domain.Conversation)) {
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			updater(&s.conversations[i])
			return
		}
	}
}

// AppendMessage appends msg to the conversation's message list and refreshes
// UpdatedAt. Append order is chronological order; nothing reorders later.
func (s *Store) AppendMessage(id string, msg domain.Message) {
	s.UpdateByID(id, func(c *domain.Conversation) {
		c.Messages = append(c.Messages, msg)
		c.UpdatedAt = time.Now()
	})
}

// RemoveLoadingPlaceholders drops every transient "loading-" message from
// the conversation, however many are present.
func (s *Store) RemoveLoadingPlaceholders(id string) {
	s.UpdateByID(id, func(c *domain.Conversation) {
		kept := c.Messages[:0]
		for _, m := range c.Messages {
			if !m.IsLoadingPlaceholder() {
				kept = append(kept, m)
			}
		}
		c.Messages = kept
	})
}

// MarkKnown records that the backend confirmed the conversation id exists.
func (s *Store) MarkKnown(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[id] = struct{}{}
}

// KnownInBackend reports whether the id is confirmed persisted remotely.
func (s *Store) KnownInBackend(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.known[id]
	return ok
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (domain.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == id {
			c.Messages = append([]domain.Message(nil), c.Messages...)
			return c, true
		}
	}
	return domain.Conversation{}, false
}

// Conversations returns a snapshot of the collection, front-first.
func (s *Store) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Conversation, len(s.conversations))
	for i, c := range s.conversations {
		c.Messages = append([]domain.Message(nil), c.Messages...)
		out[i] = c
	}
	return out
}

// Len returns how many conversations are held locally.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// LoadConversation hydrates a single conversation from the backend. On
// success the id is marked known-in-backend, the title is derived from the
// first message and timestamps from the first/last messages, and the result
// is upserted. Any failure leaves state unchanged; the caller's UI simply
// shows no such conversation.
func (s *Store) LoadConversation(ctx context.Context, hash string) error {
	messages, err := s.client.GetConversation(ctx, hash)
	if err != nil {
		log.Error().Err(err).Str("conversation", hash).Msg("failed to load conversation")
		return err
	}

	now := time.Now()
	conv := domain.Conversation{
		ID:        hash,
		Title:     domain.DefaultTitle,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(messages) > 0 {
		conv.Title = domain.DeriveTitle(messages[0].Content)
		conv.CreatedAt = messages[0].Timestamp
		conv.UpdatedAt = messages[len(messages)-1].Timestamp
	}

	s.MarkKnown(hash)
	s.UpsertIfMissing(conv)

	log.Debug().Str("conversation", hash).Int("messages", len(messages)).Msg("conversation loaded")
	return nil
}

// LoadAllForUser replaces the local collection with the user's fully
// hydrated history. Every listed id is marked known-in-backend, then message
// histories are fetched concurrently; conversations whose fetch fails are
// dropped so one bad conversation does not block the rest. Order follows the
// backend's listing, not completion order.
func (s *Store) LoadAllForUser(ctx context.Context, userID int) error {
	summaries, err := s.client.GetUserConversations(ctx, userID)
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("failed to list conversations")
		return err
	}

	for _, summary := range summaries {
		s.MarkKnown(summary.ID)
	}

	hydrated := make([]*domain.Conversation, len(summaries))
	var wg sync.WaitGroup
	for i, summary := range summaries {
		wg.Add(1)
		go func(i int, summary backend.ConversationSummary) {
			defer wg.Done()

			messages, err := s.client.GetConversation(ctx, summary.ID)
			if err != nil {
				log.Warn().Err(err).Str("conversation", summary.ID).Msg("skipping conversation that failed to hydrate")
				return
			}

			// updatedAt preference: last message timestamp, then the
			// explicit ended timestamp, then the start time.
			updatedAt := summary.StartedAt
			if summary.EndedAt != nil {
				updatedAt = *summary.EndedAt
			}
			if len(messages) > 0 {
				updatedAt = messages[len(messages)-1].Timestamp
			}

			hydrated[i] = &domain.Conversation{
				ID:        summary.ID,
				Title:     summary.Title,
				Messages:  messages,
				CreatedAt: summary.StartedAt,
				UpdatedAt: updatedAt,
			}
		}(i, summary)
	}
	wg.Wait()

	loaded := make([]domain.Conversation, 0, len(hydrated))
	for _, conv := range hydrated {
		if conv != nil {
			loaded = append(loaded, *conv)
		}
	}

	s.mu.Lock()
	s.conversations = loaded
	s.mu.Unlock()

	log.Info().Int("user_id", userID).Int("loaded", len(loaded)).Int("listed", len(summaries)).Msg("conversations loaded")
	return nil
}

// DeleteConversation asks the backend to mark the conversation ended, then
// removes it locally. The remote call is awaited first; when it fails, local
// state is left untouched and the error propagates. No partial deletion.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	if err := s.client.EndConversation(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.known, id)
	for i, c := range s.conversations {
		if c.ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			break
		}
	}
	return nil
}
