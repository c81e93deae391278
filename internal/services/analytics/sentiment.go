package analytics

import (
	"strings"

	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
)

// Lexicon terms for football-match chatter. Scoring counts distinct term
// hits per post; the sign of the balance classifies the post.
var positiveTerms = []string{
	"goal", "brilliant", "superb", "class", "win", "winner",
	"masterclass", "quality", "clinical", "unstoppable", "worldie",
	"screamer", "comeback", "deserved", "love", "great", "amazing",
	"🔥", "⚽", "🎉", "coyg", "get in",
}

var negativeTerms = []string{
	"terrible", "awful", "shambles", "disgrace", "robbed", "embarrassing",
	"pathetic", "woeful", "rubbish", "lost", "losing", "sack", "fraud",
	"dire", "hopeless", "offside", "handball", "dive", "😡", "🤬",
	"never a penalty", "waste",
}

// ScorePost returns a signed lexicon score for one post text:
// positive balance > 0, negative < 0, neutral 0.
func ScorePost(text string) int {
	lower := strings.ToLower(text)

	score := 0
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			score--
		}
	}
	return score
}

// SummarizeSentiment aggregates per-post scores into class counts and
// ratios. All fields are zero when the collection is empty.
func SummarizeSentiment(posts []post.Post) analytics.Sentiment {
	var s analytics.Sentiment
	if len(posts) == 0 {
		return s
	}

	for _, p := range posts {
		switch score := ScorePost(p.Text); {
		case score > 0:
			s.Counts.Pos++
		case score < 0:
			s.Counts.Neg++
		default:
			s.Counts.Neu++
		}
	}
	s.Counts.Total = len(posts)

	total := float64(s.Counts.Total)
	s.Ratios.Pos = float64(s.Counts.Pos) / total
	s.Ratios.Neu = float64(s.Counts.Neu) / total
	s.Ratios.Neg = float64(s.Counts.Neg) / total

	return s
}
