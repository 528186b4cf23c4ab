package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteChatLogRepo implements the chat log repository on SQLite
type sqliteChatLogRepo struct {
	db    *sql.DB
	table string
}

// NewSQLiteChatLogRepo creates a new SQLite chat log repository.
// collection names the table holding every chat's messages.
func NewSQLiteChatLogRepo(dbPath, collection string) (repo.ChatLogRepo, error) {
	if collection == "" {
		collection = "chats"
	}
	if !validIdentifier(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	table := collection + "_messages"

	// Create table
	_, err = db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			text TEXT NOT NULL,
			sender TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Create index
	_, err = db.Exec(fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_chat_created ON %s(chat_id, created_at)
	`, table, table))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &sqliteChatLogRepo{db: db, table: table}, nil
}

// Append implements repo.ChatLogRepo
func (r *sqliteChatLogRepo) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, chat_id, text, sender, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.table),
		msg.ID,
		msg.ChatID,
		msg.Text,
		string(msg.Sender),
		msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// List implements repo.ChatLogRepo
func (r *sqliteChatLogRepo) List(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, chat_id, text, sender, created_at
		FROM %s
		WHERE chat_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, r.table), chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var sender string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Text, &sender, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Sender = domain.Sender(sender)
		m.Timestamp = time.Unix(0, createdAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	reverseMessages(messages)
	return messages, nil
}

// Ping implements repo.ChatLogRepo
func (r *sqliteChatLogRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *sqliteChatLogRepo) Close() error {
	return r.db.Close()
}

func reverseMessages(messages []domain.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

// validIdentifier allows only [A-Za-z0-9_] so the name is safe to splice into SQL
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
