package chat

import "time"

// Config carries the numeric budgets and limits of the conversation core.
type Config struct {
	TokenHardCeiling     int           // hard request ceiling in estimated tokens
	TokenWarnFraction    float64       // fraction of the ceiling that triggers truncation
	TruncateTargetTokens int           // truncation target, below the ceiling
	MaxWebSnippets       int           // rolling snippet cap per conversation
	MemoryWindow         int           // recent messages excluded from memory compression
	MaxMemoryKeywords    int           // keyword cap in the memory summary
	SearchCooldown       time.Duration // hard floor between web searches
	ArticleContentLimit  int           // characters of article content sent for summarization
	DegradedSummaryLimit int           // characters kept for the degraded fallback summary
	TitleLimit           int           // characters of the first message used as title
}

// DefaultConfig returns the production budgets.
func DefaultConfig() Config {
	return Config{
		TokenHardCeiling:     90000,
		TokenWarnFraction:    0.8,
		TruncateTargetTokens: 80000,
		MaxWebSnippets:       5,
		MemoryWindow:         10,
		MaxMemoryKeywords:    5,
		SearchCooldown:       5 * time.Minute,
		ArticleContentLimit:  50000,
		DegradedSummaryLimit: 1000,
		TitleLimit:           50,
	}
}
