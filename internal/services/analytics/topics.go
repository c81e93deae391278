package analytics

import (
	"sort"
	"strings"

	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
)

// maxTopics caps the topic list length
const maxTopics = 10

// ExtractTopics counts, per configured keyword, the number of posts whose
// text contains it (case-insensitive substring; one hit per post however
// often it repeats). Output keeps the configured keyword casing, is
// sorted by descending count with ties in configuration order, drops
// zero-count keywords and is capped at ten entries.
func ExtractTopics(posts []post.Post, keywords []string) []analytics.Topic {
	topics := make([]analytics.Topic, 0, len(keywords))

	for _, kw := range keywords {
		needle := strings.ToLower(kw)
		count := 0
		for _, p := range posts {
			if strings.Contains(strings.ToLower(p.Text), needle) {
				count++
			}
		}
		if count > 0 {
			topics = append(topics, analytics.Topic{Keyword: kw, Count: count})
		}
	}

	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Count > topics[j].Count
	})

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}
