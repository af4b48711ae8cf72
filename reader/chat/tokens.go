package chat

import (
	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// TokenEstimator approximates token cost with a fixed 4-characters-per-token
// ratio. Not a real tokenizer: the fixed ratio keeps estimates deterministic
// and cheap, which is what the budgeting logic needs.
type TokenEstimator struct{}

func NewTokenEstimator() TokenEstimator { return TokenEstimator{} }

// Estimate returns ceil(len(text)/4).
func (TokenEstimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// EstimateConversation sums the estimates of the system prompt, the article
// summary, the serialized snippet set, the memory summary, and every message
// body.
func (e TokenEstimator) EstimateConversation(messages []ports.Message, systemPrompt, articleSummary string, snippets []ports.WebSnippet, memorySummary string) int {
	total := e.Estimate(systemPrompt)
	total += e.Estimate(articleSummary)
	total += e.Estimate(serializeSnippets(snippets))
	total += e.Estimate(memorySummary)
	for _, m := range messages {
		total += e.Estimate(m.Content)
	}
	return total
}
