package auth

import (
	"context"
	"fmt"

	"github.com/Om-Varma12/CarePoint/internal/backend"
	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/Om-Varma12/CarePoint/internal/identity"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// Service handles login and signup against the remote backend and mirrors
// the resulting session into the identity store.
type Service struct {
	client   backend.Client
	sessions *identity.Store
}

// NewService creates an auth service.
func NewService(client backend.Client, sessions *identity.Store) *Service {
	return &Service{client: client, sessions: sessions}
}

// Login authenticates the user and persists the session.
func (s *Service) Login(ctx context.Context, input domain.LoginInput) (*domain.UserSession, error) {
	if err := validate.Struct(input); err != nil {
		return nil, friendlyValidationError(err)
	}

	session, err := s.client.Login(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.sessions.Save(*session); err != nil {
		return nil, err
	}

	log.Info().Str("user", session.UserName).Msg("logged in")
	return session, nil
}

// Signup registers a new account and persists the session.
func (s *Service) Signup(ctx context.Context, input domain.SignupInput) (*domain.UserSession, error) {
	if err := validate.Struct(input); err != nil {
		return nil, friendlyValidationError(err)
	}

	session, err := s.client.Signup(ctx, input.Name, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	if err := s.sessions.Save(*session); err != nil {
		return nil, err
	}

	log.Info().Str("user", session.UserName).Msg("account created")
	return session, nil
}

// Logout clears the stored session.
func (s *Service) Logout() error {
	return s.sessions.Clear()
}

// CurrentSession returns the stored session, or nil when logged out.
func (s *Service) CurrentSession() (*domain.UserSession, error) {
	return s.sessions.Load()
}

// friendlyValidationError turns validator output into something a user can
// act on.
func friendlyValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s is required", e.Field())
		case "email":
			return fmt.Errorf("invalid email format")
		case "min":
			return fmt.Errorf("%s must be at least %s characters", e.Field(), e.Param())
		case "max":
			return fmt.Errorf("%s must be at most %s characters", e.Field(), e.Param())
		}
	}
	return err
}
