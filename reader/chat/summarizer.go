package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// SummarySource tags which path produced an article summary.
type SummarySource string

const (
	SummaryFromURL      SummarySource = "url"
	SummaryFromContent  SummarySource = "content"
	SummaryFromDegraded SummarySource = "degraded"
)

// ArticleSummary is the tagged result of first-turn summary generation.
type ArticleSummary struct {
	Source   SummarySource
	Text     string
	Snippets []ports.WebSnippet
}

// summaryFailurePhrases mark a URL summarization attempt the model could not
// actually complete. Matching is lowercase substring containment. Kept as a
// plain list so a structured provider-side signal can replace it later.
var summaryFailurePhrases = []string{
	"cannot access",
	"cannot browse",
	"cannot visit",
	"cannot retrieve",
	"not found",
	"error",
}

const summarizeSystemPrompt = `Summarize the article for a reader who wants to discuss it. Capture the main argument, the key evidence, and any notable conclusions in a few sentences.`

const searchSystemPrompt = `Search the web for recent, relevant context on the following text and return the results.`

// ArticleSummarizer generates the first-turn article summary and initial web
// snippets via a two-tier strategy: summarize the URL directly when one is
// available, fall back to the raw content, and degrade to a plain excerpt when
// every provider attempt fails. Summarize never returns an error.
type ArticleSummarizer struct {
	provider       ports.CompletionProvider
	failurePhrases []string
	contentLimit   int
	degradedLimit  int
	logger         zerolog.Logger
}

func NewArticleSummarizer(provider ports.CompletionProvider, cfg Config, logger zerolog.Logger) *ArticleSummarizer {
	return &ArticleSummarizer{
		provider:       provider,
		failurePhrases: summaryFailurePhrases,
		contentLimit:   cfg.ArticleContentLimit,
		degradedLimit:  cfg.DegradedSummaryLimit,
		logger:         logger.With().Str("component", "summarizer").Logger(),
	}
}

// Summarize runs the two-tier strategy. The returned summary is tagged with
// the path that produced it.
func (s *ArticleSummarizer) Summarize(ctx context.Context, articleContent, articleURL string) ArticleSummary {
	if articleURL != "" {
		summary, ok := s.summarizeURL(ctx, articleURL)
		if ok {
			return summary
		}
	}

	summary, ok := s.summarizeContent(ctx, articleContent)
	if ok {
		return summary
	}

	return ArticleSummary{
		Source: SummaryFromDegraded,
		Text:   truncateRunes(articleContent, s.degradedLimit),
	}
}

// summarizeURL asks the provider to summarize the URL with web search enabled.
// A result containing a failure phrase is discarded.
func (s *ArticleSummarizer) summarizeURL(ctx context.Context, articleURL string) (ArticleSummary, bool) {
	messages := []ports.ChatMessage{{
		Role:    ports.RoleUser,
		Content: fmt.Sprintf("Summarize the article at %s.", articleURL),
	}}

	completion, err := s.provider.Complete(ctx, summarizeSystemPrompt, messages, true)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", articleURL).Msg("url summarization failed, falling back to content")
		return ArticleSummary{}, false
	}

	text, snippets := extractCompletion(completion)
	if s.looksLikeFailure(text) {
		s.logger.Info().Str("url", articleURL).Msg("url summary contains failure phrase, falling back to content")
		return ArticleSummary{}, false
	}

	return ArticleSummary{Source: SummaryFromURL, Text: text, Snippets: snippets}, true
}

// summarizeContent summarizes the truncated raw content, then performs a
// separate web search keyed on that content. A failed search is absorbed; a
// failed summarization reports not-ok so the caller can degrade.
func (s *ArticleSummarizer) summarizeContent(ctx context.Context, articleContent string) (ArticleSummary, bool) {
	truncated := truncateRunes(articleContent, s.contentLimit)
	messages := []ports.ChatMessage{{Role: ports.RoleUser, Content: truncated}}

	completion, err := s.provider.Complete(ctx, summarizeSystemPrompt, messages, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("content summarization failed")
		return ArticleSummary{}, false
	}
	text, snippets := extractCompletion(completion)

	searchCompletion, err := s.provider.Complete(ctx, searchSystemPrompt, messages, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("content web search failed, keeping summary without it")
	} else {
		_, searchSnippets := extractCompletion(searchCompletion)
		snippets = append(snippets, searchSnippets...)
	}

	return ArticleSummary{Source: SummaryFromContent, Text: text, Snippets: snippets}, true
}

func (s *ArticleSummarizer) looksLikeFailure(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range s.failurePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// truncateRunes cuts a string to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
