package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Om-Varma12/CarePoint/internal/domain"
	"github.com/rs/zerolog/log"
)

// Jar is where the auth cookie lives. A browser embedding would back this
// with document cookies; the CLI uses a file on disk.
type Jar interface {
	Get(name string) (*http.Cookie, error)
	Set(cookie *http.Cookie) error
	Delete(name string) error
}

// Store persists the logged-in user through the auth cookie. Pure
// read/write/delete, no business logic.
type Store struct {
	jar   Jar
	codec Codec
}

// NewStore creates an identity store over the given jar.
func NewStore(jar Jar, codec Codec) *Store {
	return &Store{jar: jar, codec: codec}
}

// Save writes the session cookie.
func (s *Store) Save(session domain.UserSession) error {
	cookie, err := s.codec.Encode(session)
	if err != nil {
		return err
	}
	if err := s.jar.Set(cookie); err != nil {
		return fmt.Errorf("failed to store auth cookie: %w", err)
	}
	log.Debug().Str("user", session.UserName).Msg("session saved")
	return nil
}

// Load reads the session back, returning nil when no valid session exists.
func (s *Store) Load() (*domain.UserSession, error) {
	cookie, err := s.jar.Get(CookieName)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth cookie: %w", err)
	}
	if cookie == nil {
		return nil, nil
	}
	if !cookie.Expires.IsZero() && cookie.Expires.Before(time.Now()) {
		return nil, nil
	}

	session, err := s.codec.Decode(cookie)
	if err != nil {
		// A corrupt cookie means no session, not a hard failure.
		log.Warn().Err(err).Msg("discarding unreadable auth cookie")
		return nil, nil
	}
	return session, nil
}

// Clear removes the session cookie (logout).
func (s *Store) Clear() error {
	return s.jar.Delete(CookieName)
}

// FileJar keeps cookies in a JSON file, owner-readable only.
type FileJar struct {
	path string
}

// NewFileJar creates a file-backed jar at path, creating parent directories
// as needed.
func NewFileJar(path string) (*FileJar, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create jar directory: %w", err)
	}
	return &FileJar{path: path}, nil
}

type storedCookie struct {
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

func (j *FileJar) read() (map[string]storedCookie, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]storedCookie{}, nil
	}
	if err != nil {
		return nil, err
	}

	cookies := map[string]storedCookie{}
	if err := json.Unmarshal(data, &cookies); err != nil {
		// Unreadable jar file; start fresh.
		return map[string]storedCookie{}, nil
	}
	return cookies, nil
}

func (j *FileJar) write(cookies map[string]storedCookie) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, data, 0o600)
}

// Get returns the named cookie, or nil when absent.
func (j *FileJar) Get(name string) (*http.Cookie, error) {
	cookies, err := j.read()
	if err != nil {
		return nil, err
	}
	stored, ok := cookies[name]
	if !ok {
		return nil, nil
	}
	return &http.Cookie{Name: name, Value: stored.Value, Expires: stored.Expires}, nil
}

// Set stores the cookie.
func (j *FileJar) Set(cookie *http.Cookie) error {
	cookies, err := j.read()
	if err != nil {
		return err
	}
	cookies[cookie.Name] = storedCookie{Value: cookie.Value, Expires: cookie.Expires}
	return j.write(cookies)
}

// Delete removes the named cookie.
func (j *FileJar) Delete(name string) error {
	cookies, err := j.read()
	if err != nil {
		return err
	}
	delete(cookies, name)
	return j.write(cookies)
}
