package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// providerCall records one Complete invocation.
type providerCall struct {
	System    string
	Messages  []ports.ChatMessage
	WebSearch bool
}

// stubProvider implements CompletionProvider, recording calls and answering
// via a per-call handler.
type stubProvider struct {
	calls  []providerCall
	handle func(call int, in providerCall) (ports.Completion, error)
}

func (p *stubProvider) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage, enableWebSearch bool) (ports.Completion, error) {
	call := providerCall{System: systemPrompt, Messages: messages, WebSearch: enableWebSearch}
	p.calls = append(p.calls, call)
	if p.handle != nil {
		return p.handle(len(p.calls)-1, call)
	}
	return textCompletion("stub answer"), nil
}

func textCompletion(text string) ports.Completion {
	return ports.Completion{Content: []ports.ContentBlock{{Type: ports.BlockText, Text: text}}}
}

func searchCompletion(text string, titles ...string) ports.Completion {
	results := make([]searchResult, len(titles))
	for i, title := range titles {
		results[i] = searchResult{Title: title, Snippet: "snippet for " + title, URL: "https://example.com/" + title}
	}
	input, err := json.Marshal(searchResultsPayload{SearchResults: results})
	if err != nil {
		panic(err)
	}

	blocks := []ports.ContentBlock{{Type: ports.BlockToolUse, Name: ports.WebSearchToolName, Input: input}}
	if text != "" {
		blocks = append([]ports.ContentBlock{{Type: ports.BlockText, Text: text}}, blocks...)
	}
	return ports.Completion{Content: blocks}
}

// stubStore is an in-memory ConversationStore with injectable failures.
type stubStore struct {
	conversations map[string]*ports.Conversation
	messages      map[string][]ports.Message

	updateErr error
	appendErr error

	updates []ports.StateUpdate
	appends [][]ports.Message
}

func newStubStore() *stubStore {
	return &stubStore{
		conversations: make(map[string]*ports.Conversation),
		messages:      make(map[string][]ports.Message),
	}
}

func (s *stubStore) GetConversation(ctx context.Context, id, userID string) (*ports.Conversation, error) {
	conv, ok := s.conversations[id]
	if !ok || conv.UserID != userID {
		return nil, ports.ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (s *stubStore) CreateConversation(ctx context.Context, userID, articleID, title string) (*ports.Conversation, error) {
	conv := &ports.Conversation{
		ID:        fmt.Sprintf("conv-%d", len(s.conversations)+1),
		UserID:    userID,
		ArticleID: articleID,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.conversations[conv.ID] = conv
	return conv, nil
}

func (s *stubStore) GetMessages(ctx context.Context, conversationID string) ([]ports.Message, error) {
	return s.messages[conversationID], nil
}

func (s *stubStore) UpdateConversationState(ctx context.Context, id string, update ports.StateUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates = append(s.updates, update)
	if conv, ok := s.conversations[id]; ok {
		conv.ArticleSummary = update.ArticleSummary
		conv.WebSnippets = update.WebSnippets
		conv.MemorySummary = update.MemorySummary
		conv.TotalTokens = update.TotalTokens
		conv.ConversationLength = update.ConversationLength
		conv.LastWebSearchAt = update.LastWebSearchAt
	}
	return nil
}

func (s *stubStore) AppendMessages(ctx context.Context, conversationID string, messages []ports.Message) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appends = append(s.appends, messages)
	s.messages[conversationID] = append(s.messages[conversationID], messages...)
	return nil
}

var (
	_ ports.CompletionProvider = (*stubProvider)(nil)
	_ ports.ConversationStore  = (*stubStore)(nil)
)
