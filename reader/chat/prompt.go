package chat

import (
	"fmt"
	"strings"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

const basePromptInstructions = `You are a reading assistant embedded in the user's reading list. You help the user understand, question, and discuss the article they are reading. Ground your answers in the article and the provided context, be direct, and say so when you do not know.`

const firstMessagePromptInstructions = `This is the first message of the conversation. Give a thorough answer, and include a short recap of the article (2-3 sentences) that can seed the rest of the discussion.`

// PromptBuilder assembles the system instructions from current conversation
// state. Pure string concatenation; identical inputs yield identical output.
type PromptBuilder struct{}

func NewPromptBuilder() PromptBuilder { return PromptBuilder{} }

// BuildSystemPrompt renders the system instructions. The first turn asks for a
// recap and grounds the model with the freshly generated article summary;
// follow-up turns ground it with the memory summary first, then the article
// summary. A non-empty snippet set is appended on either branch as a numbered
// list in stored order.
func (PromptBuilder) BuildSystemPrompt(isFirstMessage bool, articleSummary string, snippets []ports.WebSnippet, memorySummary string) string {
	var b strings.Builder
	b.WriteString(basePromptInstructions)

	if isFirstMessage {
		b.WriteString("\n\n")
		b.WriteString(firstMessagePromptInstructions)
		if articleSummary != "" {
			b.WriteString("\n\nArticle summary: ")
			b.WriteString(articleSummary)
		}
	} else {
		if memorySummary != "" {
			b.WriteString("\n\n")
			b.WriteString(memorySummary)
		}
		if articleSummary != "" {
			b.WriteString("\n\nArticle summary: ")
			b.WriteString(articleSummary)
		}
	}

	if len(snippets) > 0 {
		b.WriteString("\n\nRelevant web results:")
		for i, s := range snippets {
			b.WriteString(fmt.Sprintf("\n%d. %s: %s", i+1, s.Title, s.Content))
		}
	}

	return b.String()
}
