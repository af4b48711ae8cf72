package chat

import (
	"encoding/json"
	"strings"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// mergeSnippets appends incoming snippets to the existing set and enforces the
// cap by dropping the oldest entries from the front. No dedup across merges:
// duplicate titles/URLs are possible and accepted.
func mergeSnippets(existing, incoming []ports.WebSnippet, capacity int) []ports.WebSnippet {
	merged := make([]ports.WebSnippet, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	if capacity > 0 && len(merged) > capacity {
		merged = merged[len(merged)-capacity:]
	}
	return merged
}

// serializeSnippets renders snippets as "title: content" entries joined by
// blank lines, the form used for token estimation.
func serializeSnippets(snippets []ports.WebSnippet) string {
	if len(snippets) == 0 {
		return ""
	}
	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = s.Title + ": " + s.Content
	}
	return strings.Join(parts, "\n\n")
}

// searchResultsPayload is the expected shape of a web_search tool_use input.
type searchResultsPayload struct {
	SearchResults []searchResult `json:"search_results"`
}

type searchResult struct {
	Title          string   `json:"title"`
	Snippet        string   `json:"snippet"`
	Content        string   `json:"content"`
	URL            string   `json:"url"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// extractCompletion splits a provider completion into its answer text and any
// web search snippets embedded in tool_use blocks. Text blocks are joined with
// newlines in order; unknown block types and non-search tools are ignored.
func extractCompletion(c ports.Completion) (string, []ports.WebSnippet) {
	var texts []string
	var snippets []ports.WebSnippet

	for _, block := range c.Content {
		switch block.Type {
		case ports.BlockText:
			if block.Text != "" {
				texts = append(texts, block.Text)
			}
		case ports.BlockToolUse:
			if block.Name != ports.WebSearchToolName {
				continue
			}
			var payload searchResultsPayload
			if err := json.Unmarshal(block.Input, &payload); err != nil {
				continue
			}
			for _, r := range payload.SearchResults {
				content := r.Snippet
				if content == "" {
					content = r.Content
				}
				snippets = append(snippets, ports.WebSnippet{
					Title:          r.Title,
					Content:        content,
					URL:            r.URL,
					RelevanceScore: r.RelevanceScore,
				})
			}
		}
	}

	return strings.Join(texts, "\n"), snippets
}
