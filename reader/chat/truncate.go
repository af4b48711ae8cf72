package chat

import (
	ports "github.com/tswee5/reader-app-web-sub000/reader/chat/ports"
)

// HistoryTruncator drops the oldest turns to keep a request within a hard
// token ceiling.
type HistoryTruncator struct {
	estimator    TokenEstimator
	hardCeiling  int
	warnFraction float64
}

func NewHistoryTruncator(estimator TokenEstimator, hardCeiling int, warnFraction float64) HistoryTruncator {
	return HistoryTruncator{
		estimator:    estimator,
		hardCeiling:  hardCeiling,
		warnFraction: warnFraction,
	}
}

// IsApproachingTokenLimit reports whether the running total has crossed the
// warning threshold (warnFraction of the hard ceiling).
func (t HistoryTruncator) IsApproachingTokenLimit(totalTokens int) bool {
	return float64(totalTokens) > t.warnFraction*float64(t.hardCeiling)
}

// Truncate walks messages newest-first, greedily keeping each while the
// running estimate stays within maxTokens, and stops at the first message that
// would exceed it. The kept window is then advanced to the next user message
// so it always opens with a user turn, and returned in chronological order.
func (t HistoryTruncator) Truncate(messages []ports.Message, maxTokens int) []ports.Message {
	running := 0
	keepFrom := len(messages)

	for i := len(messages) - 1; i >= 0; i-- {
		cost := t.estimator.Estimate(messages[i].Content)
		if running+cost > maxTokens {
			break
		}
		running += cost
		keepFrom = i
	}

	for keepFrom < len(messages) && messages[keepFrom].Role != ports.RoleUser {
		keepFrom++
	}

	kept := make([]ports.Message, len(messages)-keepFrom)
	copy(kept, messages[keepFrom:])
	return kept
}
