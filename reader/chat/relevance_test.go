package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelevancePolicy_RequiresWebSearch(t *testing.T) {
	policy := NewRelevancePolicy(5 * time.Minute)

	tests := []struct {
		message string
		want    bool
	}{
		{"What's the LATEST news?", true},
		{"what is the current price of gold", true},
		{"How does the weather affect the argument?", true},
		{"Show me the statistics", true},
		{"Compare this to the author's earlier work", true},
		{"Explain the main argument", false},
		{"Who is the author?", false},
		{"Summarize the second section", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.RequiresWebSearch(tt.message))
		})
	}
}

func TestRelevancePolicy_RequiresWebSearchIsCaseInsensitive(t *testing.T) {
	policy := NewRelevancePolicy(5 * time.Minute)

	assert.True(t, policy.RequiresWebSearch("BREAKING news"))
	assert.True(t, policy.RequiresWebSearch("bReAkInG NEWS"))
}

func TestRelevancePolicy_ShouldPerformWebSearch(t *testing.T) {
	policy := NewRelevancePolicy(5 * time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	policy.now = func() time.Time { return now }

	t.Run("no prior search", func(t *testing.T) {
		assert.True(t, policy.ShouldPerformWebSearch(nil))
	})

	t.Run("searched two minutes ago", func(t *testing.T) {
		last := now.Add(-2 * time.Minute)
		assert.False(t, policy.ShouldPerformWebSearch(&last))
	})

	t.Run("searched ten minutes ago", func(t *testing.T) {
		last := now.Add(-10 * time.Minute)
		assert.True(t, policy.ShouldPerformWebSearch(&last))
	})

	t.Run("exactly at the cooldown", func(t *testing.T) {
		last := now.Add(-5 * time.Minute)
		assert.True(t, policy.ShouldPerformWebSearch(&last))
	})
}
