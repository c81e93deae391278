package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/internal/domain/post"
)

func mkPost(text string, createdAt time.Time) post.Post {
	return post.Post{
		ID:        fmt.Sprintf("p-%d", createdAt.UnixNano()),
		Author:    post.Author{ID: "1", Handle: "fan"},
		Text:      text,
		CreatedAt: createdAt,
	}
}

var base = time.Date(2026, 5, 9, 15, 30, 0, 0, time.UTC)

func TestSummarizeSentiment_Empty(t *testing.T) {
	s := SummarizeSentiment(nil)
	assert.Zero(t, s.Counts.Total)
	assert.Zero(t, s.Counts.Pos)
	assert.Zero(t, s.Counts.Neg)
	assert.Zero(t, s.Counts.Neu)
	assert.Zero(t, s.Ratios.Pos)
	assert.Zero(t, s.Ratios.Neg)
	assert.Zero(t, s.Ratios.Neu)
}

func TestSummarizeSentiment_Classification(t *testing.T) {
	posts := []post.Post{
		mkPost("What a brilliant goal, superb finish", base),
		mkPost("Absolute shambles at the back, terrible defending", base),
		mkPost("Half time, no score yet", base),
		mkPost("Another goal! Unstoppable today", base),
	}

	s := SummarizeSentiment(posts)
	assert.Equal(t, 4, s.Counts.Total)
	assert.Equal(t, 2, s.Counts.Pos)
	assert.Equal(t, 1, s.Counts.Neg)
	assert.Equal(t, 1, s.Counts.Neu)

	sum := s.Ratios.Pos + s.Ratios.Neu + s.Ratios.Neg
	assert.InDelta(t, 1.0, sum, 1e-9, "ratios sum to 1 when volume > 0")
}

func TestScorePost_MixedTermsCancel(t *testing.T) {
	// Equal positive and negative hits balance out to neutral.
	assert.Equal(t, 0, ScorePost("great goal, terrible and awful defending"))
	assert.Positive(t, ScorePost("brilliant win"))
	assert.Negative(t, ScorePost("what a disgrace"))
}

func TestExtractTopics(t *testing.T) {
	posts := []post.Post{
		mkPost("Arsenal looking sharp today", base),
		mkPost("ARSENAL have scored! COYG", base),
		mkPost("coyg! what a start", base),
	}
	keywords := []string{"arsenal", "coyg", "referee"}

	topics := ExtractTopics(posts, keywords)
	require.Len(t, topics, 2, "zero-count keywords are omitted")
	assert.Equal(t, "arsenal", topics[0].Keyword, "configured casing preserved")
	assert.Equal(t, 2, topics[0].Count)
	assert.Equal(t, "coyg", topics[1].Keyword)
	assert.Equal(t, 2, topics[1].Count)
}

func TestExtractTopics_TieBreakIsConfigOrder(t *testing.T) {
	posts := []post.Post{mkPost("var drama and a penalty shout", base)}
	topics := ExtractTopics(posts, []string{"penalty", "var"})

	require.Len(t, topics, 2)
	assert.Equal(t, "penalty", topics[0].Keyword)
	assert.Equal(t, "var", topics[1].Keyword)
}

func TestExtractTopics_CountsPostsNotOccurrences(t *testing.T) {
	posts := []post.Post{mkPost("goal goal goal goal", base)}
	topics := ExtractTopics(posts, []string{"goal"})

	require.Len(t, topics, 1)
	assert.Equal(t, 1, topics[0].Count)
}

func TestExtractTopics_CapAtTen(t *testing.T) {
	var keywords []string
	text := ""
	for i := 0; i < 12; i++ {
		kw := fmt.Sprintf("kw%02d", i)
		keywords = append(keywords, kw)
		text += kw + " "
	}

	topics := ExtractTopics([]post.Post{mkPost(text, base)}, keywords)
	assert.Len(t, topics, 10)
}

func TestRecentSamples(t *testing.T) {
	var posts []post.Post
	for i := 0; i < 8; i++ {
		posts = append(posts, mkPost(fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	samples := RecentSamples(posts, 5)
	require.Len(t, samples, 5)
	assert.Equal(t, "post 7", samples[0].Text, "most recent first")
	assert.Equal(t, "post 3", samples[4].Text)
	assert.Equal(t, "fan", samples[0].AuthorHandle)
}

func TestEngine_Analyze(t *testing.T) {
	engine := NewEngine([]string{"goal"}, 3)
	posts := []post.Post{
		mkPost("goal! brilliant stuff", base),
		mkPost("quiet spell", base.Add(time.Minute)),
	}

	sentiment, topics, samples := engine.Analyze(posts)
	assert.Equal(t, 2, sentiment.Counts.Total)
	require.Len(t, topics, 1)
	assert.Equal(t, 1, topics[0].Count)
	assert.Len(t, samples, 2)
}
