package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// ChatRequest is the single public entry point's input.
type ChatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	ArticleID      string `json:"article_id"`
	ArticleContent string `json:"article_content"`
	ArticleURL     string `json:"article_url,omitempty"`
	UserID         string `json:"user_id"`
}

// ConversationState is the transient view of a conversation's mutable fields,
// passed by value.
type ConversationState struct {
	ArticleSummary     string             `json:"article_summary,omitempty"`
	WebSnippets        []ports.WebSnippet `json:"web_snippets,omitempty"`
	MemorySummary      string             `json:"memory_summary,omitempty"`
	TotalTokens        int                `json:"total_tokens"`
	ConversationLength int                `json:"conversation_length"`
	LastWebSearchAt    *time.Time         `json:"last_web_search_at,omitempty"`
}

// ChatResponse is returned to the caller after a completed turn.
type ChatResponse struct {
	Response       string             `json:"response"`
	ConversationID string             `json:"conversation_id"`
	State          ConversationState  `json:"conversation_state"`
	WebSnippets    []ports.WebSnippet `json:"web_snippets,omitempty"`
	TokenUsage     int                `json:"token_usage"`
	IsFirstMessage bool               `json:"is_first_message"`
}

// Orchestrator drives one chat turn end to end: load or create the
// conversation, run the first-turn or follow-up path, persist, respond. Each
// request is a single sequential pass; there is no long-lived state and no
// internal parallelism. Concurrent turns on the same conversation are
// last-write-wins on the state update (known limitation, accepted).
type Orchestrator struct {
	cfg        Config
	provider   ports.CompletionProvider
	store      ports.ConversationStore
	estimator  TokenEstimator
	relevance  *RelevancePolicy
	compressor MemoryCompressor
	builder    PromptBuilder
	truncator  HistoryTruncator
	summarizer *ArticleSummarizer
	tracer     ports.Tracer
	logger     zerolog.Logger
	now        func() time.Time
}

func NewOrchestrator(
	cfg Config,
	provider ports.CompletionProvider,
	store ports.ConversationStore,
	tracer ports.Tracer,
	logger zerolog.Logger,
) *Orchestrator {
	estimator := NewTokenEstimator()
	if tracer == nil {
		tracer = noopTracer{}
	}
	return &Orchestrator{
		cfg:        cfg,
		provider:   provider,
		store:      store,
		estimator:  estimator,
		relevance:  NewRelevancePolicy(cfg.SearchCooldown),
		compressor: NewMemoryCompressor(cfg.MemoryWindow, cfg.MaxMemoryKeywords),
		builder:    NewPromptBuilder(),
		truncator:  NewHistoryTruncator(estimator, cfg.TokenHardCeiling, cfg.TokenWarnFraction),
		summarizer: NewArticleSummarizer(provider, cfg, logger),
		tracer:     tracer,
		logger:     logger.With().Str("component", "chat").Logger(),
		now:        time.Now,
	}
}

// ProcessMessage runs one conversation turn. First-turn summary and search
// failures degrade locally and never surface; provider failures abort the turn
// with no partial persistence; store failures after a successful completion
// are logged and the answer is still returned.
func (o *Orchestrator) ProcessMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ports.InvalidRequestError{Reason: "message is blank"}
	}
	if req.UserID == "" || req.ArticleID == "" {
		return nil, &ports.InvalidRequestError{Reason: "user_id and article_id are required"}
	}

	ctx, finish := o.tracer.StartSpan(ctx, "process_message", map[string]any{
		"user_id":    req.UserID,
		"article_id": req.ArticleID,
	})

	resp, err := o.processMessage(ctx, req)
	finish(err)
	return resp, err
}

func (o *Orchestrator) processMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	conv, history, err := o.loadOrCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	userMsg := ports.Message{
		Role:      ports.RoleUser,
		Content:   req.Message,
		CreatedAt: o.now(),
	}

	if conv.ConversationLength == 0 {
		return o.firstTurn(ctx, req, conv, userMsg)
	}
	return o.followupTurn(ctx, conv, history, userMsg)
}

// loadOrCreate fetches an existing conversation scoped to the caller, or
// creates a new one titled after the first message. History is loaded only for
// existing conversations.
func (o *Orchestrator) loadOrCreate(ctx context.Context, req ChatRequest) (*ports.Conversation, []ports.Message, error) {
	if req.ConversationID != "" {
		conv, err := o.store.GetConversation(ctx, req.ConversationID, req.UserID)
		if errors.Is(err, ports.ErrConversationNotFound) {
			return nil, nil, &ports.NotFoundOrForbiddenError{ConversationID: req.ConversationID}
		}
		if err != nil {
			return nil, nil, &ports.PersistenceError{Op: "load conversation", Err: err}
		}
		history, err := o.store.GetMessages(ctx, conv.ID)
		if err != nil {
			return nil, nil, &ports.PersistenceError{Op: "load messages", Err: err}
		}
		return conv, history, nil
	}

	conv, err := o.store.CreateConversation(ctx, req.UserID, req.ArticleID, deriveTitle(req.Message, o.cfg.TitleLimit))
	if err != nil {
		return nil, nil, &ports.PersistenceError{Op: "create conversation", Err: err}
	}
	return conv, nil, nil
}

func (o *Orchestrator) firstTurn(ctx context.Context, req ChatRequest, conv *ports.Conversation, userMsg ports.Message) (*ChatResponse, error) {
	summary := o.summarizer.Summarize(ctx, req.ArticleContent, req.ArticleURL)
	o.tracer.Event(ctx, "article_summary", map[string]any{"source": string(summary.Source)})

	prompt := o.builder.BuildSystemPrompt(true, summary.Text, summary.Snippets, "")

	turn := []ports.Message{userMsg}
	completion, err := o.complete(ctx, prompt, turn, true)
	if err != nil {
		return nil, err
	}

	answer, extra := extractCompletion(completion)
	snippets := mergeSnippets(summary.Snippets, extra, o.cfg.MaxWebSnippets)

	assistantMsg := ports.Message{
		Role:      ports.RoleAssistant,
		Content:   answer,
		CreatedAt: o.now(),
	}
	stored := append(turn, assistantMsg)

	searchedAt := o.now()
	state := ConversationState{
		ArticleSummary:     summary.Text,
		WebSnippets:        snippets,
		TotalTokens:        o.estimator.EstimateConversation(stored, prompt, summary.Text, snippets, ""),
		ConversationLength: len(stored),
		LastWebSearchAt:    &searchedAt,
	}

	o.persist(ctx, conv.ID, state, stored)

	return &ChatResponse{
		Response:       answer,
		ConversationID: conv.ID,
		State:          state,
		WebSnippets:    snippets,
		TokenUsage:     state.TotalTokens,
		IsFirstMessage: true,
	}, nil
}

func (o *Orchestrator) followupTurn(ctx context.Context, conv *ports.Conversation, history []ports.Message, userMsg ports.Message) (*ChatResponse, error) {
	working := append(append([]ports.Message{}, history...), userMsg)

	snippets := conv.WebSnippets
	searchPerformed := false
	if o.relevance.RequiresWebSearch(userMsg.Content) && o.relevance.ShouldPerformWebSearch(conv.LastWebSearchAt) {
		results, err := o.webSearch(ctx, userMsg.Content)
		if err != nil {
			o.logger.Warn().Err(err).Str("conversation_id", conv.ID).Msg("web search failed, continuing without fresh snippets")
		} else {
			snippets = mergeSnippets(snippets, results, o.cfg.MaxWebSnippets)
			searchPerformed = true
		}
	}

	memory := conv.MemorySummary
	if memory == "" && len(working) > o.cfg.MemoryWindow {
		memory = o.compressor.GenerateMemorySummary(working)
	}

	prompt := o.builder.BuildSystemPrompt(false, conv.ArticleSummary, snippets, memory)

	if o.truncator.IsApproachingTokenLimit(conv.TotalTokens) {
		before := len(working)
		working = o.truncator.Truncate(working, o.cfg.TruncateTargetTokens)
		o.tracer.Event(ctx, "history_truncated", map[string]any{
			"conversation_id": conv.ID,
			"dropped":         before - len(working),
		})
	}

	completion, err := o.complete(ctx, prompt, working, false)
	if err != nil {
		return nil, err
	}

	answer, extra := extractCompletion(completion)
	snippets = mergeSnippets(snippets, extra, o.cfg.MaxWebSnippets)

	assistantMsg := ports.Message{
		Role:      ports.RoleAssistant,
		Content:   answer,
		CreatedAt: o.now(),
	}

	lastSearch := conv.LastWebSearchAt
	if searchPerformed {
		searchedAt := o.now()
		lastSearch = &searchedAt
	}

	state := ConversationState{
		ArticleSummary:     conv.ArticleSummary,
		WebSnippets:        snippets,
		MemorySummary:      memory,
		TotalTokens:        o.estimator.EstimateConversation(append(working, assistantMsg), prompt, conv.ArticleSummary, snippets, memory),
		ConversationLength: conv.ConversationLength + 2,
		LastWebSearchAt:    lastSearch,
	}

	o.persist(ctx, conv.ID, state, []ports.Message{userMsg, assistantMsg})

	return &ChatResponse{
		Response:       answer,
		ConversationID: conv.ID,
		State:          state,
		WebSnippets:    snippets,
		TokenUsage:     state.TotalTokens,
		IsFirstMessage: false,
	}, nil
}

// complete validates the message list and converts it for the provider. Any
// provider failure is surfaced as a CompletionProviderError; validation
// failures indicate an orchestrator defect and are logged as such.
func (o *Orchestrator) complete(ctx context.Context, prompt string, messages []ports.Message, enableWebSearch bool) (ports.Completion, error) {
	chatMsgs := make([]ports.ChatMessage, len(messages))
	for i, m := range messages {
		chatMsgs[i] = ports.ChatMessage{Role: m.Role, Content: m.Content}
	}

	if err := ports.ValidateChatMessages(chatMsgs); err != nil {
		o.logger.Error().Err(err).Msg("provider request failed validation")
		return ports.Completion{}, err
	}

	ctx, finish := o.tracer.StartSpan(ctx, "provider_call", map[string]any{
		"messages":   len(chatMsgs),
		"web_search": enableWebSearch,
	})
	completion, err := o.provider.Complete(ctx, prompt, chatMsgs, enableWebSearch)
	finish(err)

	if err != nil {
		var provErr *ports.CompletionProviderError
		if errors.As(err, &provErr) {
			return ports.Completion{}, err
		}
		return ports.Completion{}, &ports.CompletionProviderError{Err: err}
	}
	return completion, nil
}

// webSearch performs a standalone search keyed on the message text. The
// answer text of the search call is discarded; only snippets are kept.
func (o *Orchestrator) webSearch(ctx context.Context, query string) ([]ports.WebSnippet, error) {
	completion, err := o.complete(ctx, searchSystemPrompt, []ports.Message{{Role: ports.RoleUser, Content: query}}, true)
	if err != nil {
		return nil, err
	}
	_, snippets := extractCompletion(completion)
	return snippets, nil
}

// persist writes the conversation state, then appends the new messages. A
// failure here is best-effort: the caller still receives the answer and the
// inconsistency is logged.
func (o *Orchestrator) persist(ctx context.Context, conversationID string, state ConversationState, messages []ports.Message) {
	update := ports.StateUpdate{
		ArticleSummary:     state.ArticleSummary,
		WebSnippets:        state.WebSnippets,
		MemorySummary:      state.MemorySummary,
		TotalTokens:        state.TotalTokens,
		ConversationLength: state.ConversationLength,
		LastWebSearchAt:    state.LastWebSearchAt,
	}
	if err := o.store.UpdateConversationState(ctx, conversationID, update); err != nil {
		perr := &ports.PersistenceError{Op: "update conversation state", Err: err}
		o.logger.Error().Err(perr).Str("conversation_id", conversationID).Msg("conversation state not persisted")
		o.tracer.Event(ctx, "persistence_error", map[string]any{"op": perr.Op})
		return
	}
	if err := o.store.AppendMessages(ctx, conversationID, messages); err != nil {
		perr := &ports.PersistenceError{Op: "append messages", Err: err}
		o.logger.Error().Err(perr).Str("conversation_id", conversationID).Msg("messages not persisted after state update")
		o.tracer.Event(ctx, "persistence_error", map[string]any{"op": perr.Op})
	}
}

// deriveTitle builds a conversation title from the first message.
func deriveTitle(message string, limit int) string {
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	return string(runes[:limit]) + "..."
}

// noopTracer keeps tracing optional.
type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (noopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}
