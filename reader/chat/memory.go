package chat

import (
	"strings"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// memoryStopwords filters connective words out of keyword extraction. Tokens
// of length <= 4 are dropped before this list is consulted.
var memoryStopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "being": {}, "could": {},
	"doing": {}, "going": {}, "having": {}, "other": {}, "really": {},
	"should": {}, "their": {}, "there": {}, "these": {}, "thing": {},
	"things": {}, "think": {}, "those": {}, "waiting": {}, "where": {},
	"which": {}, "while": {}, "would": {}, "write": {}, "wrote": {},
}

const keywordsPerMessage = 3

// MemoryCompressor condenses old conversation turns into a short topical
// summary. Intentionally crude keyword extraction rather than semantic
// summarization: deterministic and cheap.
type MemoryCompressor struct {
	window      int // most recent messages excluded from compression
	maxKeywords int
}

func NewMemoryCompressor(window, maxKeywords int) MemoryCompressor {
	return MemoryCompressor{window: window, maxKeywords: maxKeywords}
}

// GenerateMemorySummary returns "" until the history outgrows the window.
// Beyond that it extracts up to maxKeywords deduplicated keywords from the
// user messages preceding the window and renders them as a single sentence.
func (c MemoryCompressor) GenerateMemorySummary(messages []ports.Message) string {
	if len(messages) <= c.window {
		return ""
	}

	older := messages[:len(messages)-c.window]

	seen := make(map[string]struct{})
	var keywords []string

	for _, m := range older {
		if m.Role != ports.RoleUser {
			continue
		}
		kept := 0
		for _, word := range strings.Fields(m.Content) {
			word = strings.ToLower(strings.Trim(word, ".,!?;:'\"()"))
			if len(word) <= 4 {
				continue
			}
			if _, stop := memoryStopwords[word]; stop {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			keywords = append(keywords, word)
			kept++
			if kept >= keywordsPerMessage {
				break
			}
		}
	}

	if len(keywords) == 0 {
		return ""
	}
	if len(keywords) > c.maxKeywords {
		keywords = keywords[:c.maxKeywords]
	}

	return "Earlier conversation covered topics including: " + strings.Join(keywords, ", ") + "."
}
