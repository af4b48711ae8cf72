package chatports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Chat roles as stored and as sent to the completion provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn as sent to the provider (system instructions travel
// separately, never inside this list).
type ChatMessage struct {
	Role    string
	Content string
}

// Content block types returned by the provider.
const (
	BlockText    = "text"
	BlockToolUse = "tool_use"
)

// WebSearchToolName identifies the provider-side web search tool whose
// tool_use blocks carry search results.
const WebSearchToolName = "web_search"

// ContentBlock is a single element of a provider completion. Text blocks carry
// Text; tool_use blocks carry Name and the raw Input payload.
type ContentBlock struct {
	Type  string
	Text  string
	Name  string
	Input json.RawMessage
}

// Completion is the provider's structured response.
type Completion struct {
	Content []ContentBlock
}

// CompletionProvider sends a system prompt plus chat history to an LLM backend
// and optionally lets it perform web search. Implementations must fail fast
// with a *ValidationError, before any network I/O, when the message list
// violates the contract (see ValidateChatMessages).
type CompletionProvider interface {
	Complete(ctx context.Context, systemPrompt string, messages []ChatMessage, enableWebSearch bool) (Completion, error)
}

// ValidateChatMessages enforces the provider precondition: a non-empty list
// whose first entry is a user turn with non-blank content.
func ValidateChatMessages(messages []ChatMessage) error {
	if len(messages) == 0 {
		return &ValidationError{Reason: "message list is empty"}
	}
	first := messages[0]
	if first.Role != RoleUser {
		return &ValidationError{Reason: fmt.Sprintf("first message must have role %q, got %q", RoleUser, first.Role)}
	}
	if strings.TrimSpace(first.Content) == "" {
		return &ValidationError{Reason: "first user message has blank content"}
	}
	return nil
}
