package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

func userMessage(content string) ports.Message {
	return ports.Message{Role: ports.RoleUser, Content: content}
}

func assistantMessage(content string) ports.Message {
	return ports.Message{Role: ports.RoleAssistant, Content: content}
}

func TestMemoryCompressor_ShortHistoryYieldsNothing(t *testing.T) {
	compressor := NewMemoryCompressor(10, 5)

	var messages []ports.Message
	for i := 0; i < 10; i++ {
		messages = append(messages, userMessage(fmt.Sprintf("question number %d about quantum computing", i)))
	}

	assert.Equal(t, "", compressor.GenerateMemorySummary(messages))
	assert.Equal(t, "", compressor.GenerateMemorySummary(nil))
}

func TestMemoryCompressor_ExtractsKeywordsFromOlderUserMessages(t *testing.T) {
	compressor := NewMemoryCompressor(10, 5)

	messages := []ports.Message{
		userMessage("Tell me about quantum computing hardware"),
		assistantMessage("Quantum computers use qubits."),
	}
	// pad with 10 recent messages that must not contribute keywords
	for i := 0; i < 10; i++ {
		messages = append(messages, userMessage("recent question about volcanoes"))
	}

	summary := compressor.GenerateMemorySummary(messages)
	assert.True(t, strings.HasPrefix(summary, "Earlier conversation covered topics including: "))
	assert.Contains(t, summary, "quantum")
	assert.Contains(t, summary, "computing")
	assert.Contains(t, summary, "hardware")
	assert.NotContains(t, summary, "volcanoes")
	assert.True(t, strings.HasSuffix(summary, "."))
}

func TestMemoryCompressor_CapsKeywordsAtFive(t *testing.T) {
	compressor := NewMemoryCompressor(10, 5)

	messages := []ports.Message{
		userMessage("quantum computing hardware architecture"),
		userMessage("neural networks optimization gradients"),
		userMessage("distributed consensus algorithms"),
	}
	for i := 0; i < 10; i++ {
		messages = append(messages, assistantMessage("filler"))
	}

	summary := compressor.GenerateMemorySummary(messages)
	body := strings.TrimSuffix(strings.TrimPrefix(summary, "Earlier conversation covered topics including: "), ".")
	assert.LessOrEqual(t, len(strings.Split(body, ", ")), 5)
}

func TestMemoryCompressor_DropsShortAndStopwordTokens(t *testing.T) {
	compressor := NewMemoryCompressor(10, 5)

	messages := []ports.Message{
		userMessage("what would they do with it"),
	}
	for i := 0; i < 10; i++ {
		messages = append(messages, assistantMessage("filler"))
	}

	// every token is short or a stopword, so no summary can be produced
	assert.Equal(t, "", compressor.GenerateMemorySummary(messages))
}

func TestMemoryCompressor_DeduplicatesKeywords(t *testing.T) {
	compressor := NewMemoryCompressor(10, 5)

	messages := []ports.Message{
		userMessage("quantum quantum quantum entanglement"),
		userMessage("quantum entanglement again sortof"),
	}
	for i := 0; i < 10; i++ {
		messages = append(messages, assistantMessage("filler"))
	}

	summary := compressor.GenerateMemorySummary(messages)
	assert.Equal(t, 1, strings.Count(summary, "quantum"))
	assert.Equal(t, 1, strings.Count(summary, "entanglement"))
}
