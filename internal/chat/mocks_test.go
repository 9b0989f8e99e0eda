package chat

import (
	"context"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockBackend mocks the backend.Client interface
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateConversation(ctx context.Context, hash string, userID int, title string) error {
	args := m.Called(ctx, hash, userID, title)
	return args.Error(0)
}

func (m *MockBackend) AddMessage(ctx context.Context, hash string, sender domain.MessageRole, message string) error {
	args := m.Called(ctx, hash, sender, message)
	return args.Error(0)
}

func (m *MockBackend) GetConversation(ctx context.Context, hash string) ([]domain.Message, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockBackend) GetUserConversations(ctx context.Context, userID int) ([]backend.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]backend.ConversationSummary), args.Error(1)
}

func (m *MockBackend) EndConversation(ctx context.Context, hash string) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

func (m *MockBackend) GetAIResponse(ctx context.Context, hash string) (*backend.AIReply, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.AIReply), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, email, password string) (*domain.UserSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSession), args.Error(1)
}

func (m *MockBackend) Signup(ctx context.Context, name, email, password string) (*domain.UserSession, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSession), args.Error(1)
}
