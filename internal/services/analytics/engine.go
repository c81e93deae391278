package analytics

import (
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
)

// Engine bundles the three aggregations over one in-memory post
// collection. Side-effect-free; safe for concurrent use.
type Engine struct {
	keywords    []string
	sampleCount int
}

// NewEngine creates an analytics engine with the configured topic
// keywords and sample count
func NewEngine(keywords []string, sampleCount int) *Engine {
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}
	return &Engine{keywords: keywords, sampleCount: sampleCount}
}

// Analyze computes sentiment, topics and samples for one post collection
func (e *Engine) Analyze(posts []post.Post) (analytics.Sentiment, []analytics.Topic, []analytics.Sample) {
	return SummarizeSentiment(posts),
		ExtractTopics(posts, e.keywords),
		RecentSamples(posts, e.sampleCount)
}
