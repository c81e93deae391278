package analytics

import (
	"sort"

	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
)

// DefaultSampleCount is the number of sample quotes per tick
const DefaultSampleCount = 5

// RecentSamples projects the n most recent posts into display samples.
// The input slice is not mutated.
func RecentSamples(posts []post.Post, n int) []analytics.Sample {
	if n <= 0 {
		n = DefaultSampleCount
	}

	sorted := make([]post.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	samples := make([]analytics.Sample, 0, len(sorted))
	for _, p := range sorted {
		samples = append(samples, analytics.Sample{
			AuthorHandle: p.Author.Handle,
			Text:         p.Text,
			CreatedAt:    p.CreatedAt,
		})
	}
	return samples
}
