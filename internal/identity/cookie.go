package identity

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/domain"
)

// CookieName is the cookie holding the logged-in user's session.
const CookieName = "medwise_auth"

// CookieTTL is how long the session cookie lives.
const CookieTTL = 30 * 24 * time.Hour

// Codec encodes a user session into the auth cookie and back: a
// base64-encoded JSON blob, 30-day expiry, strict same-site, secure only in
// production-like environments.
type Codec struct {
	// Secure marks the cookie secure; enable in production.
	Secure bool
}

// Encode serializes the session into the auth cookie.
func (c Codec) Encode(session domain.UserSession) (*http.Cookie, error) {
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    base64.StdEncoding.EncodeToString(payload),
		Expires:  time.Now().Add(CookieTTL),
		MaxAge:   int(CookieTTL / time.Second),
		SameSite: http.SameSiteStrictMode,
		Secure:   c.Secure,
		Path:     "/",
	}, nil
}

// Decode parses the auth cookie back into a session.
func (c Codec) Decode(cookie *http.Cookie) (*domain.UserSession, error) {
	payload, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie: %w", err)
	}

	var session domain.UserSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to parse cookie payload: %w", err)
	}
	return &session, nil
}
