package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

func TestHistoryTruncator_IsApproachingTokenLimit(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)

	assert.False(t, truncator.IsApproachingTokenLimit(0))
	assert.False(t, truncator.IsApproachingTokenLimit(72000)) // threshold is strict
	assert.True(t, truncator.IsApproachingTokenLimit(72001))
	assert.True(t, truncator.IsApproachingTokenLimit(75000))
}

func TestHistoryTruncator_DropsOldestFirst(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)
	est := NewTokenEstimator()

	// 10 messages of 25 estimated tokens each (100 chars)
	var messages []ports.Message
	for i := 0; i < 10; i++ {
		messages = append(messages, ports.Message{
			Role:    ports.RoleUser,
			Content: fmt.Sprintf("%02d%s", i, strings.Repeat("x", 98)),
		})
	}

	kept := truncator.Truncate(messages, 100)

	assert.Len(t, kept, 4)
	// chronological order preserved, newest tail kept
	assert.Equal(t, messages[6].Content, kept[0].Content)
	assert.Equal(t, messages[9].Content, kept[3].Content)

	sum := 0
	for _, m := range kept {
		sum += est.Estimate(m.Content)
	}
	assert.LessOrEqual(t, sum, 100)
}

func TestHistoryTruncator_KeepsEverythingUnderBudget(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)

	messages := []ports.Message{
		{Role: ports.RoleUser, Content: "short"},
		{Role: ports.RoleAssistant, Content: "also short"},
	}

	kept := truncator.Truncate(messages, 1000)
	assert.Equal(t, messages, kept)
}

func TestHistoryTruncator_StopsAtFirstOversizedMessage(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)

	messages := []ports.Message{
		{Role: ports.RoleUser, Content: "tiny"},
		{Role: ports.RoleAssistant, Content: strings.Repeat("x", 1000)}, // 250 tokens
		{Role: ports.RoleUser, Content: "tail"},
	}

	// the oversized middle message blocks everything before it
	kept := truncator.Truncate(messages, 10)
	assert.Len(t, kept, 1)
	assert.Equal(t, "tail", kept[0].Content)
}

func TestHistoryTruncator_WindowOpensWithUserTurn(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)

	// alternating turns of 25 estimated tokens each (100 chars)
	var messages []ports.Message
	for i := 0; i < 10; i++ {
		role := ports.RoleUser
		if i%2 == 1 {
			role = ports.RoleAssistant
		}
		messages = append(messages, ports.Message{
			Role:    role,
			Content: fmt.Sprintf("%02d%s", i, strings.Repeat("x", 98)),
		})
	}

	// a 75-token budget lands the cut on the assistant turn at index 7,
	// which must be dropped so the window starts on a user turn
	kept := truncator.Truncate(messages, 75)

	assert.Len(t, kept, 2)
	assert.Equal(t, ports.RoleUser, kept[0].Role)
	assert.Equal(t, messages[8].Content, kept[0].Content)
	assert.Equal(t, messages[9].Content, kept[1].Content)
}

func TestHistoryTruncator_EmptyBudget(t *testing.T) {
	truncator := NewHistoryTruncator(NewTokenEstimator(), 90000, 0.8)

	messages := []ports.Message{{Role: ports.RoleUser, Content: "anything"}}
	kept := truncator.Truncate(messages, 0)
	assert.Empty(t, kept)
}
