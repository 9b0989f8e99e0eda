package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendMessage_PreservesCallOrder(t *testing.T) {
	store := NewStore(new(MockBackend))
	store.UpsertIfMissing(domain.NewConversation("abc123defg", "hello"))

	first := domain.NewUserMessage("one")
	second := domain.NewBotMessage("two")
	third := domain.NewUserMessage("three")

	store.AppendMessage("abc123defg", first)
	store.AppendMessage("abc123defg", second)
	before := time.Now()
	store.AppendMessage("abc123defg", third)

	conv, ok := store.Get("abc123defg")
	require.True(t, ok)
	require.Len(t, conv.Messages, 3)
	assert.Equal(t, "one", conv.Messages[0].Content)
	assert.Equal(t, "two", conv.Messages[1].Content)
	assert.Equal(t, "three", conv.Messages[2].Content)
	assert.False(t, conv.UpdatedAt.Before(before), "UpdatedAt should reflect the last append")
}

func TestStore_UpsertIfMissing_Idempotent(t *testing.T) {
	store := NewStore(new(MockBackend))

	store.UpsertIfMissing(domain.NewConversation("abc123defg", "first"))
	store.UpsertIfMissing(domain.NewConversation("abc123defg", "second"))

	assert.Equal(t, 1, store.Len())
	conv, ok := store.Get("abc123defg")
	require.True(t, ok)
	assert.Equal(t, "first", conv.Title)
}

func TestStore_UpsertIfMissing_InsertsAtFront(t *testing.T) {
	store := NewStore(new(MockBackend))

	store.UpsertIfMissing(domain.NewConversation("older00000", "older"))
	store.UpsertIfMissing(domain.NewConversation("newer00000", "newer"))

	conversations := store.Conversations()
	require.Len(t, conversations, 2)
	assert.Equal(t, "newer00000", conversations[0].ID)
	assert.Equal(t, "older00000", conversations[1].ID)
}

func TestStore_RemoveLoadingPlaceholders(t *testing.T) {
	tests := []struct {
		name         string
		placeholders int
	}{
		{"none", 0},
		{"one", 1},
		{"many", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(new(MockBackend))
			store.UpsertIfMissing(domain.NewConversation("abc123defg", "hello"))
			store.AppendMessage("abc123defg", domain.NewUserMessage("hello"))
			for i := 0; i < tt.placeholders; i++ {
				store.AppendMessage("abc123defg", domain.Message{
					ID:      domain.LoadingIDPrefix + string(rune('a'+i)),
					Role:    domain.RoleBot,
					Content: "...",
				})
			}
			store.AppendMessage("abc123defg", domain.NewBotMessage("real reply"))

			store.RemoveLoadingPlaceholders("abc123defg")

			conv, ok := store.Get("abc123defg")
			require.True(t, ok)
			require.Len(t, conv.Messages, 2)
			for _, msg := range conv.Messages {
				assert.False(t, msg.IsLoadingPlaceholder())
			}
		})
	}
}

func TestStore_UpdateByID_UnknownIDIsNoop(t *testing.T) {
	store := NewStore(new(MockBackend))
	store.UpsertIfMissing(domain.NewConversation("abc123defg", "hello"))

	called := false
	store.UpdateByID("nosuchhash", func(c *domain.Conversation) { called = true })

	assert.False(t, called)
	assert.Equal(t, 1, store.Len())
}

func TestStore_LoadConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("success derives title and timestamps", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)

		start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		end := start.Add(5 * time.Minute)
		mockBackend.On("GetConversation", ctx, "abc123defg").Return([]domain.Message{
			{ID: "1", Role: domain.RoleUser, Content: "I have a terrible headache that just will not go away no matter what", Timestamp: start},
			{ID: "2", Role: domain.RoleBot, Content: "Sorry to hear that.", Timestamp: end},
		}, nil)

		require.NoError(t, store.LoadConversation(ctx, "abc123defg"))

		assert.True(t, store.KnownInBackend("abc123defg"))
		conv, ok := store.Get("abc123defg")
		require.True(t, ok)
		assert.Equal(t, "I have a terrible headache that just will not go a", conv.Title)
		assert.Equal(t, start, conv.CreatedAt)
		assert.Equal(t, end, conv.UpdatedAt)
		assert.Len(t, conv.Messages, 2)
	})

	t.Run("empty history gets default title", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		mockBackend.On("GetConversation", ctx, "empty00000").Return([]domain.Message{}, nil)

		require.NoError(t, store.LoadConversation(ctx, "empty00000"))

		conv, ok := store.Get("empty00000")
		require.True(t, ok)
		assert.Equal(t, domain.DefaultTitle, conv.Title)
	})

	t.Run("failure leaves state unchanged", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		mockBackend.On("GetConversation", ctx, "broken0000").Return(nil, errors.New("boom"))

		err := store.LoadConversation(ctx, "broken0000")

		assert.Error(t, err)
		assert.Equal(t, 0, store.Len())
		assert.False(t, store.KnownInBackend("broken0000"))
	})
}

func TestStore_LoadAllForUser_PartialFailure(t *testing.T) {
	ctx := context.Background()
	mockBackend := new(MockBackend)
	store := NewStore(mockBackend)

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	summaries := []backend.ConversationSummary{
		{ID: "first00000", Title: "First", StartedAt: started},
		{ID: "second0000", Title: "Second", StartedAt: started},
		{ID: "third00000", Title: "Third", StartedAt: started},
	}
	mockBackend.On("GetUserConversations", ctx, 7).Return(summaries, nil)
	mockBackend.On("GetConversation", ctx, "first00000").Return([]domain.Message{
		{ID: "1", Role: domain.RoleUser, Content: "hi", Timestamp: started.Add(time.Minute)},
	}, nil)
	mockBackend.On("GetConversation", ctx, "second0000").Return(nil, errors.New("boom"))
	mockBackend.On("GetConversation", ctx, "third00000").Return([]domain.Message{}, nil)

	require.NoError(t, store.LoadAllForUser(ctx, 7))

	conversations := store.Conversations()
	require.Len(t, conversations, 2)
	// Backend listing order, not completion order.
	assert.Equal(t, "first00000", conversations[0].ID)
	assert.Equal(t, "third00000", conversations[1].ID)

	// The failed conversation was still reported by the listing, so it
	// stays known-in-backend.
	assert.True(t, store.KnownInBackend("second0000"))
}

func TestStore_LoadAllForUser_UpdatedAtPreference(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ended := started.Add(time.Hour)
	lastMsg := started.Add(30 * time.Minute)

	t.Run("last message wins", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		mockBackend.On("GetUserConversations", ctx, 1).Return([]backend.ConversationSummary{
			{ID: "conv000001", Title: "T", StartedAt: started, EndedAt: &ended},
		}, nil)
		mockBackend.On("GetConversation", ctx, "conv000001").Return([]domain.Message{
			{ID: "1", Role: domain.RoleUser, Content: "hi", Timestamp: lastMsg},
		}, nil)

		require.NoError(t, store.LoadAllForUser(ctx, 1))
		conv, _ := store.Get("conv000001")
		assert.Equal(t, lastMsg, conv.UpdatedAt)
	})

	t.Run("ended timestamp when no messages", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		mockBackend.On("GetUserConversations", ctx, 1).Return([]backend.ConversationSummary{
			{ID: "conv000002", Title: "T", StartedAt: started, EndedAt: &ended},
		}, nil)
		mockBackend.On("GetConversation", ctx, "conv000002").Return([]domain.Message{}, nil)

		require.NoError(t, store.LoadAllForUser(ctx, 1))
		conv, _ := store.Get("conv000002")
		assert.Equal(t, ended, conv.UpdatedAt)
	})

	t.Run("start time as final fallback", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		mockBackend.On("GetUserConversations", ctx, 1).Return([]backend.ConversationSummary{
			{ID: "conv000003", Title: "T", StartedAt: started},
		}, nil)
		mockBackend.On("GetConversation", ctx, "conv000003").Return([]domain.Message{}, nil)

		require.NoError(t, store.LoadAllForUser(ctx, 1))
		conv, _ := store.Get("conv000003")
		assert.Equal(t, started, conv.UpdatedAt)
	})
}

func TestStore_LoadAllForUser_ReplacesCollection(t *testing.T) {
	ctx := context.Background()
	mockBackend := new(MockBackend)
	store := NewStore(mockBackend)
	store.UpsertIfMissing(domain.NewConversation("stale00000", "stale"))

	mockBackend.On("GetUserConversations", ctx, 1).Return([]backend.ConversationSummary{
		{ID: "fresh00000", Title: "Fresh", StartedAt: time.Now()},
	}, nil)
	mockBackend.On("GetConversation", ctx, "fresh00000").Return([]domain.Message{}, nil)

	require.NoError(t, store.LoadAllForUser(ctx, 1))

	conversations := store.Conversations()
	require.Len(t, conversations, 1)
	assert.Equal(t, "fresh00000", conversations[0].ID)
}

func TestStore_DeleteConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("success removes locally", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		store.UpsertIfMissing(domain.NewConversation("abc123defg", "hello"))
		store.MarkKnown("abc123defg")
		mockBackend.On("EndConversation", ctx, "abc123defg").Return(nil)

		require.NoError(t, store.DeleteConversation(ctx, "abc123defg"))

		assert.Equal(t, 0, store.Len())
		assert.False(t, store.KnownInBackend("abc123defg"))
	})

	t.Run("remote failure leaves state untouched", func(t *testing.T) {
		mockBackend := new(MockBackend)
		store := NewStore(mockBackend)
		store.UpsertIfMissing(domain.NewConversation("abc123defg", "hello"))
		store.MarkKnown("abc123defg")
		mockBackend.On("EndConversation", ctx, "abc123defg").Return(errors.New("boom"))

		err := store.DeleteConversation(ctx, "abc123defg")

		assert.Error(t, err)
		assert.Equal(t, 1, store.Len())
		assert.True(t, store.KnownInBackend("abc123defg"))
	})
}
