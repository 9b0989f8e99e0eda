package stubserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrConversationExists rejects a duplicate conversation hash.
	ErrConversationExists = errors.New("Conversation already exists")
	// ErrConversationNotFound rejects messages into unknown conversations.
	ErrConversationNotFound = errors.New("Conversation not found")
	// ErrEmailTaken rejects signup with an existing email.
	ErrEmailTaken = errors.New("User with this email already exists")
	// ErrInvalidCredentials rejects a failed login.
	ErrInvalidCredentials = errors.New("Invalid email or password")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation (
	conversation_id TEXT PRIMARY KEY,
	user_id         INTEGER NOT NULL REFERENCES users(user_id),
	title           TEXT NOT NULL,
	started_at      TIMESTAMP NOT NULL,
	ended_at        TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	message_id      INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL REFERENCES conversation(conversation_id),
	sender          TEXT NOT NULL,
	message         TEXT NOT NULL,
	timestamp       TIMESTAMP NOT NULL
);
`

// Store is the stub backend's sqlite persistence layer.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed initializes) the sqlite database at path.
// Use ":memory:" for a throwaway test store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// User is a stored account.
type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
}

// CreateUser inserts an account and returns its id.
func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (int, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return 0, ErrEmailTaken
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return int(id), nil
}

// GetUserByEmail returns the account for the email, or nil.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, password_hash FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateConversation inserts a conversation under the client-supplied hash.
func (s *Store) CreateConversation(ctx context.Context, hash string, userID int, title string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation WHERE conversation_id = ?`, hash,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists > 0 {
		return ErrConversationExists
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation (conversation_id, user_id, title, started_at, ended_at) VALUES (?, ?, ?, ?, ?)`,
		hash, userID, title, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// AddMessage appends a message. A user message also refreshes the
// conversation's ended_at, which doubles as last-activity.
func (s *Store) AddMessage(ctx context.Context, hash, sender, message string) (int, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation WHERE conversation_id = ?`, hash,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return 0, ErrConversationNotFound
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (conversation_id, sender, message, timestamp) VALUES (?, ?, ?, ?)`,
		hash, sender, message, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to add message: %w", err)
	}

	if sender == "user" {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE conversation SET ended_at = ? WHERE conversation_id = ?`, now, hash,
		); err != nil {
			return 0, fmt.Errorf("failed to touch conversation: %w", err)
		}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read message id: %w", err)
	}
	return int(id), nil
}

// StoredMessage is one message row.
type StoredMessage struct {
	ID        int       `json:"message_id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// GetMessages returns a conversation's messages in chronological order.
func (s *Store) GetMessages(ctx context.Context, hash string) ([]StoredMessage, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation WHERE conversation_id = ?`, hash,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return nil, ErrConversationNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, sender, message, timestamp FROM messages WHERE conversation_id = ? ORDER BY timestamp ASC, message_id ASC`,
		hash,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []StoredMessage{}
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Message, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// StoredConversation is one listing row.
type StoredConversation struct {
	ID        string     `json:"conversation_id"`
	Title     string     `json:"title"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// GetUserConversations lists a user's conversations, most recently active
// first.
func (s *Store) GetUserConversations(ctx context.Context, userID int) ([]StoredConversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, title, started_at, ended_at FROM conversation WHERE user_id = ? ORDER BY ended_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []StoredConversation{}
	for rows.Next() {
		var c StoredConversation
		if err := rows.Scan(&c.ID, &c.Title, &c.StartedAt, &c.EndedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// EndConversation stamps ended_at on the conversation.
func (s *Store) EndConversation(ctx context.Context, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE conversation SET ended_at = ? WHERE conversation_id = ?`,
		time.Now().UTC(), hash,
	)
	if err != nil {
		return fmt.Errorf("failed to end conversation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end conversation: %w", err)
	}
	if affected == 0 {
		return ErrConversationNotFound
	}
	return nil
}
