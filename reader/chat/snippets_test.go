package chat

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

func TestMergeSnippets_CapHoldsAcrossMerges(t *testing.T) {
	var set []ports.WebSnippet

	for round := 0; round < 10; round++ {
		incoming := []ports.WebSnippet{
			{Title: fmt.Sprintf("r%d-a", round), Content: "x"},
			{Title: fmt.Sprintf("r%d-b", round), Content: "y"},
		}
		set = mergeSnippets(set, incoming, 5)
		assert.LessOrEqual(t, len(set), 5, "cap violated on round %d", round)
	}

	// newest entries survive; oldest were dropped from the front
	assert.Equal(t, "r9-b", set[len(set)-1].Title)
	assert.Equal(t, "r7-b", set[0].Title)
}

func TestMergeSnippets_NoDedup(t *testing.T) {
	dup := ports.WebSnippet{Title: "same", URL: "https://example.com", Content: "x"}
	merged := mergeSnippets([]ports.WebSnippet{dup}, []ports.WebSnippet{dup}, 5)
	assert.Len(t, merged, 2)
}

func TestSerializeSnippets(t *testing.T) {
	assert.Equal(t, "", serializeSnippets(nil))

	snippets := []ports.WebSnippet{
		{Title: "A", Content: "one"},
		{Title: "B", Content: "two"},
	}
	assert.Equal(t, "A: one\n\nB: two", serializeSnippets(snippets))
}

func TestExtractCompletion_TextAndSearchBlocks(t *testing.T) {
	score := 0.9
	input, err := json.Marshal(searchResultsPayload{SearchResults: []searchResult{
		{Title: "Result", Snippet: "from snippet field", URL: "https://example.com", RelevanceScore: &score},
		{Title: "Fallback", Content: "from content field"},
	}})
	assert.NoError(t, err)

	completion := ports.Completion{Content: []ports.ContentBlock{
		{Type: ports.BlockText, Text: "Hello"},
		{Type: ports.BlockToolUse, Name: ports.WebSearchToolName, Input: input},
		{Type: ports.BlockText, Text: "world"},
	}}

	text, snippets := extractCompletion(completion)
	assert.Equal(t, "Hello\nworld", text)
	assert.Len(t, snippets, 2)
	assert.Equal(t, "from snippet field", snippets[0].Content)
	assert.Equal(t, "from content field", snippets[1].Content)
	assert.Equal(t, 0.9, *snippets[0].RelevanceScore)
}

func TestExtractCompletion_IgnoresOtherToolsAndBadPayloads(t *testing.T) {
	completion := ports.Completion{Content: []ports.ContentBlock{
		{Type: ports.BlockToolUse, Name: "calculator", Input: json.RawMessage(`{"a":1}`)},
		{Type: ports.BlockToolUse, Name: ports.WebSearchToolName, Input: json.RawMessage(`not json`)},
		{Type: ports.BlockText, Text: "answer"},
	}}

	text, snippets := extractCompletion(completion)
	assert.Equal(t, "answer", text)
	assert.Empty(t, snippets)
}
