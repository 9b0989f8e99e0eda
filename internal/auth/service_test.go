package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/Om-Varma12/CarePoint/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreateConversation(ctx context.Context, hash string, userID int, title string) error {
	return m.Called(ctx, hash, userID, title).Error(0)
}

func (m *MockBackend) AddMessage(ctx context.Context, hash string, sender domain.MessageRole, message string) error {
	return m.Called(ctx, hash, sender, message).Error(0)
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
	return m.Called(ctx, hash).Error(0)
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

func newTestService(t *testing.T) (*Service, *MockBackend) {
	t.Helper()
	jar, err := identity.NewFileJar(filepath.Join(t.TempDir(), "cookies.json"))
	require.NoError(t, err)
	mockBackend := new(MockBackend)
	return NewService(mockBackend, identity.NewStore(jar, identity.Codec{})), mockBackend
}

func TestLogin(t *testing.T) {
	t.Run("success persists session", func(t *testing.T) {
		service, mockBackend := newTestService(t)
		mockBackend.On("Login", mock.Anything, "jo@example.com", "secret123").
			Return(&domain.UserSession{UserID: 7, UserName: "Jo", Email: "jo@example.com"}, nil).Once()

		session, err := service.Login(context.Background(), domain.LoginInput{
			Email:    "jo@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, 7, session.UserID)

		stored, err := service.CurrentSession()
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, *session, *stored)
		mockBackend.AssertExpectations(t)
	})

	t.Run("invalid email rejected before any request", func(t *testing.T) {
		service, mockBackend := newTestService(t)

		_, err := service.Login(context.Background(), domain.LoginInput{
			Email:    "not-an-email",
			Password: "secret123",
		})

		require.Error(t, err)
		assert.Equal(t, "invalid email format", err.Error())
		mockBackend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend rejection surfaces", func(t *testing.T) {
		service, mockBackend := newTestService(t)
		mockBackend.On("Login", mock.Anything, "jo@example.com", "wrongpass").
			Return(nil, errors.New("Invalid email or password")).Once()

		_, err := service.Login(context.Background(), domain.LoginInput{
			Email:    "jo@example.com",
			Password: "wrongpass",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email or password")

		stored, err := service.CurrentSession()
		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestSignup(t *testing.T) {
	t.Run("success persists session", func(t *testing.T) {
		service, mockBackend := newTestService(t)
		mockBackend.On("Signup", mock.Anything, "Jo", "jo@example.com", "secret123").
			Return(&domain.UserSession{UserID: 8, UserName: "Jo", Email: "jo@example.com"}, nil).Once()

		session, err := service.Signup(context.Background(), domain.SignupInput{
			Name:     "Jo",
			Email:    "jo@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, 8, session.UserID)

		stored, err := service.CurrentSession()
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("short password rejected before any request", func(t *testing.T) {
		service, mockBackend := newTestService(t)

		_, err := service.Signup(context.Background(), domain.SignupInput{
			Name:     "Jo",
			Email:    "jo@example.com",
			Password: "short",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
		mockBackend.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		service, mockBackend := newTestService(t)

		_, err := service.Signup(context.Background(), domain.SignupInput{
			Email:    "jo@example.com",
			Password: "secret123",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
		mockBackend.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogout(t *testing.T) {
	service, mockBackend := newTestService(t)
	mockBackend.On("Login", mock.Anything, "jo@example.com", "secret123").
		Return(&domain.UserSession{UserID: 7, UserName: "Jo", Email: "jo@example.com"}, nil).Once()

	_, err := service.Login(context.Background(), domain.LoginInput{Email: "jo@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, service.Logout())

	stored, err := service.CurrentSession()
	require.NoError(t, err)
	assert.Nil(t, stored)
}
