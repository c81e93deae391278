package analytics

import (
	"time"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/match"
)

// SentimentRatios are per-class shares of total volume. They sum to 1
// when volume > 0 and are all zero otherwise.
type SentimentRatios struct {
	Pos float64 `json:"pos"`
	Neu float64 `json:"neu"`
	Neg float64 `json:"neg"`
}

// SentimentCounts are raw per-class post counts
type SentimentCounts struct {
	Total int `json:"total"`
	Pos   int `json:"pos"`
	Neu   int `json:"neu"`
	Neg   int `json:"neg"`
}

// Sentiment is the aggregate sentiment of one post collection
type Sentiment struct {
	Ratios SentimentRatios `json:"ratios"`
	Counts SentimentCounts `json:"counts"`
}

// Topic is one configured keyword and the number of posts containing it
type Topic struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Sample is a recent quote projected for display
type Sample struct {
	AuthorHandle string    `json:"authorHandle"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Window describes the time slice a tick was computed over
type Window struct {
	Phase           match.Phase    `json:"phase"`
	Bin             *match.LiveBin `json:"bin,omitempty"`
	LookbackMinutes int            `json:"lookbackMinutes"`
}

// TickSummary is one emitted analytics snapshot. Generated fresh each
// tick, never mutated after creation; Tick is the resumption cursor.
type TickSummary struct {
	MatchID      string           `json:"matchId"`
	Platform     account.Platform `json:"platform"`
	Window       Window           `json:"window"`
	GeneratedAt  time.Time        `json:"generatedAt"`
	Tick         int64            `json:"tick"`
	Sentiment    Sentiment        `json:"sentiment"`
	Volume       int              `json:"volume"`
	AccountsUsed []string         `json:"accountsUsed"`
	Topics       []Topic          `json:"topics"`
	Samples      []Sample         `json:"samples"`
}
