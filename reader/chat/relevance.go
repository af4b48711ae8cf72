package chat

import (
	"strings"
	"time"
)

// webSearchKeywords signal a need for current or external facts. Matching is
// exact lowercase substring containment, nothing fuzzy.
var webSearchKeywords = []string{
	"latest", "today", "yesterday", "this week", "this month", "this year",
	"current", "currently", "recent", "recently", "right now", "breaking",
	"news", "update", "happening",
	"price", "cost", "stock", "market",
	"statistics", "stats", "data", "numbers",
	"compare", "comparison", "versus", " vs ",
	"election", "weather", "covid", "pandemic",
	"2024", "2025",
}

// RelevancePolicy decides whether a user message warrants a web search and
// whether a search is allowed given the recency throttle.
type RelevancePolicy struct {
	keywords []string
	cooldown time.Duration
	now      func() time.Time
}

func NewRelevancePolicy(cooldown time.Duration) *RelevancePolicy {
	return &RelevancePolicy{
		keywords: webSearchKeywords,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// RequiresWebSearch reports whether the lowercased message contains any
// search-signaling keyword.
func (p *RelevancePolicy) RequiresWebSearch(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range p.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ShouldPerformWebSearch reports whether enough time has passed since the last
// search. True when no prior search is recorded. This is a hard floor on
// search frequency, not a hint.
func (p *RelevancePolicy) ShouldPerformWebSearch(lastWebSearchAt *time.Time) bool {
	if lastWebSearchAt == nil {
		return true
	}
	return p.now().Sub(*lastWebSearchAt) >= p.cooldown
}
