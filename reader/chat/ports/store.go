package chatports

import (
	"context"
	"errors"
	"time"
)

// ErrConversationNotFound is returned by ConversationStore.GetConversation
// when no conversation matches the (id, userID) pair. Ownership by a different
// user is indistinguishable from absence at this layer.
var ErrConversationNotFound = errors.New("conversation not found")

// WebSnippet is one piece of externally retrieved context, merged into a
// conversation's rolling snippet set.
type WebSnippet struct {
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	URL            string   `json:"url,omitempty"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// Message is one stored conversation turn. The log is append-only, ordered by
// CreatedAt.
type Message struct {
	ID        string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Conversation is one thread of discussion anchored to a single article and
// user.
type Conversation struct {
	ID        string
	UserID    string
	ArticleID string
	Title     string

	ArticleSummary     string
	WebSnippets        []WebSnippet
	MemorySummary      string
	TotalTokens        int
	ConversationLength int
	LastWebSearchAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StateUpdate carries the mutable conversation fields written after a turn.
// All fields are written as given; counters are recomputed by the caller, not
// incremented by the store.
type StateUpdate struct {
	ArticleSummary     string
	WebSnippets        []WebSnippet
	MemorySummary      string
	TotalTokens        int
	ConversationLength int
	LastWebSearchAt    *time.Time
}

// ConversationStore is durable storage for conversation metadata and the
// message log.
type ConversationStore interface {
	// GetConversation fetches a conversation scoped to its owner. Returns
	// ErrConversationNotFound when absent or owned by a different user.
	GetConversation(ctx context.Context, id, userID string) (*Conversation, error)

	// CreateConversation inserts a new conversation with zeroed counters.
	CreateConversation(ctx context.Context, userID, articleID, title string) (*Conversation, error)

	// GetMessages returns the full message log in chronological order.
	GetMessages(ctx context.Context, conversationID string) ([]Message, error)

	// UpdateConversationState overwrites the mutable state fields.
	UpdateConversationState(ctx context.Context, id string, update StateUpdate) error

	// AppendMessages appends messages to the log in one batch.
	AppendMessages(ctx context.Context, conversationID string, messages []Message) error
}
