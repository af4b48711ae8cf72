package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// LibSQLConversationStore implements the ConversationStore port on an embedded
// libsql database. Snippets are stored as a JSON column; messages live in an
// append-only table ordered by created_at.
type LibSQLConversationStore struct {
	db *sql.DB
}

func NewLibSQLConversationStore(db *sql.DB) *LibSQLConversationStore {
	return &LibSQLConversationStore{db: db}
}

func (s *LibSQLConversationStore) GetConversation(ctx context.Context, id, userID string) (*ports.Conversation, error) {
	query := `
		SELECT id, user_id, article_id, title, article_summary, web_snippets,
		       memory_summary, total_tokens, conversation_length, last_web_search_at,
		       created_at, updated_at
		FROM conversations
		WHERE id = ? AND user_id = ?
	`

	var (
		conv         ports.Conversation
		snippetsJSON string
		lastSearch   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&conv.ID, &conv.UserID, &conv.ArticleID, &conv.Title,
		&conv.ArticleSummary, &snippetsJSON, &conv.MemorySummary,
		&conv.TotalTokens, &conv.ConversationLength, &lastSearch,
		&conv.CreatedAt, &conv.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	if snippetsJSON != "" {
		if err := json.Unmarshal([]byte(snippetsJSON), &conv.WebSnippets); err != nil {
			return nil, fmt.Errorf("decode snippets for conversation %s: %w", id, err)
		}
	}
	if lastSearch.Valid {
		t := lastSearch.Time
		conv.LastWebSearchAt = &t
	}
	return &conv, nil
}

func (s *LibSQLConversationStore) CreateConversation(ctx context.Context, userID, articleID, title string) (*ports.Conversation, error) {
	now := time.Now().UTC()
	conv := &ports.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		ArticleID: articleID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO conversations (id, user_id, article_id, title, article_summary,
			web_snippets, memory_summary, total_tokens, conversation_length,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, '', '[]', '', 0, 0, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, conv.ID, userID, articleID, title, now, now); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

func (s *LibSQLConversationStore) GetMessages(ctx context.Context, conversationID string) ([]ports.Message, error) {
	query := `
		SELECT id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []ports.Message
	for rows.Next() {
		var m ports.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *LibSQLConversationStore) UpdateConversationState(ctx context.Context, id string, update ports.StateUpdate) error {
	snippets := update.WebSnippets
	if snippets == nil {
		snippets = []ports.WebSnippet{}
	}
	snippetsJSON, err := json.Marshal(snippets)
	if err != nil {
		return fmt.Errorf("encode snippets: %w", err)
	}

	var lastSearch any
	if update.LastWebSearchAt != nil {
		lastSearch = update.LastWebSearchAt.UTC()
	}

	query := `
		UPDATE conversations
		SET article_summary = ?, web_snippets = ?, memory_summary = ?,
		    total_tokens = ?, conversation_length = ?, last_web_search_at = ?,
		    updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		update.ArticleSummary, string(snippetsJSON), update.MemorySummary,
		update.TotalTokens, update.ConversationLength, lastSearch,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update conversation %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ports.ErrConversationNotFound
	}
	return nil
}

func (s *LibSQLConversationStore) AppendMessages(ctx context.Context, conversationID string, messages []ports.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, m := range messages {
		msgID := m.ID
		if msgID == "" {
			msgID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, msgID, conversationID, m.Role, m.Content, m.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}

var _ ports.ConversationStore = (*LibSQLConversationStore)(nil)
