package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// ProviderConfig configures the HTTP completion provider.
type ProviderConfig struct {
	BaseURL    string
	APIKey     string
	APIVersion string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
}

// HTTPCompletionProvider implements the CompletionProvider port against a
// messages-style completion API: system instructions travel in a dedicated
// field, responses are content blocks, and web search is a server-side tool.
type HTTPCompletionProvider struct {
	cfg    ProviderConfig
	client *http.Client
	logger zerolog.Logger
}

func NewHTTPCompletionProvider(cfg ProviderConfig, logger zerolog.Logger) *HTTPCompletionProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPCompletionProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "completion_provider").Logger(),
	}
}

type completionRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []requestMessage  `json:"messages"`
	Tools     []toolDeclaration `json:"tools,omitempty"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolDeclaration struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type completionResponse struct {
	Content []responseBlock `json:"content"`
}

type responseBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// searchResultsSchema validates web_search tool_use payloads before the core
// trusts them. A payload that fails validation is a malformed response.
const searchResultsSchema = `{
	"type": "object",
	"required": ["search_results"],
	"properties": {
		"search_results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["title"],
				"properties": {
					"title": {"type": "string"},
					"snippet": {"type": "string"},
					"content": {"type": "string"},
					"url": {"type": "string"},
					"relevance_score": {"type": "number"}
				}
			}
		}
	}
}`

var searchResultsSchemaLoader = gojsonschema.NewStringLoader(searchResultsSchema)

// Complete sends the prompt and history to the completion API. The message
// list is validated locally before any network I/O.
func (p *HTTPCompletionProvider) Complete(ctx context.Context, systemPrompt string, messages []ports.ChatMessage, enableWebSearch bool) (ports.Completion, error) {
	if err := ports.ValidateChatMessages(messages); err != nil {
		return ports.Completion{}, err
	}

	reqBody := completionRequest{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		System:    systemPrompt,
		Messages:  make([]requestMessage, len(messages)),
	}
	for i, m := range messages {
		reqBody.Messages[i] = requestMessage{Role: m.Role, Content: m.Content}
	}
	if enableWebSearch {
		reqBody.Tools = []toolDeclaration{{
			Type:    "web_search_20250305",
			Name:    ports.WebSearchToolName,
			MaxUses: 3,
		}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return ports.Completion{}, &ports.CompletionProviderError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return ports.Completion{}, &ports.CompletionProviderError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	if p.cfg.APIVersion != "" {
		httpReq.Header.Set("anthropic-version", p.cfg.APIVersion)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return ports.Completion{}, &ports.CompletionProviderError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Completion{}, &ports.CompletionProviderError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn().Int("status", resp.StatusCode).Msg("completion call failed")
		return ports.Completion{}, &ports.CompletionProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ports.Completion{}, &ports.CompletionProviderError{StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("decode response: %w", err)}
	}

	return p.toCompletion(parsed)
}

// toCompletion converts the wire response into port content blocks, rejecting
// search payloads that do not match the expected schema.
func (p *HTTPCompletionProvider) toCompletion(parsed completionResponse) (ports.Completion, error) {
	completion := ports.Completion{Content: make([]ports.ContentBlock, 0, len(parsed.Content))}
	for _, block := range parsed.Content {
		switch block.Type {
		case "text":
			completion.Content = append(completion.Content, ports.ContentBlock{Type: ports.BlockText, Text: block.Text})
		case "tool_use", "server_tool_use":
			if block.Name == ports.WebSearchToolName {
				if err := p.validateSearchResults(block.Input); err != nil {
					return ports.Completion{}, &ports.CompletionProviderError{Err: fmt.Errorf("malformed web_search payload: %w", err)}
				}
			}
			completion.Content = append(completion.Content, ports.ContentBlock{
				Type:  ports.BlockToolUse,
				Name:  block.Name,
				Input: block.Input,
			})
		default:
			// Unknown block types are dropped rather than failing the turn.
			p.logger.Debug().Str("type", block.Type).Msg("dropping unknown content block")
		}
	}
	return completion, nil
}

func (p *HTTPCompletionProvider) validateSearchResults(input json.RawMessage) error {
	result, err := gojsonschema.Validate(searchResultsSchemaLoader, gojsonschema.NewBytesLoader(input))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("schema violation: %v", result.Errors())
	}
	return nil
}

var _ ports.CompletionProvider = (*HTTPCompletionProvider)(nil)
