package summary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/internal/domain/post"
)

func postsWithTexts(texts ...string) []post.Post {
	out := make([]post.Post, len(texts))
	for i, t := range texts {
		out[i] = post.Post{ID: string(rune('a' + i)), Text: t}
	}
	return out
}

func TestPlanBudget_HardCharacterCut(t *testing.T) {
	cfg := BudgetConfig{
		ModelMaxTokens:         1000,
		ReservedResponseTokens: 600,
		CharsPerToken:          1,
		MaxPosts:               120,
	}
	posts := postsWithTexts(
		strings.Repeat("a", 300),
		strings.Repeat("b", 300),
	)

	plan := PlanBudget(posts, cfg)

	assert.LessOrEqual(t, len(plan.TruncatedJoinedText), 400)
	assert.Equal(t, len(plan.TruncatedJoinedText), plan.CharsKept)
	assert.Equal(t, 2, plan.PostsKept, "second post kept partially")
	assert.True(t, strings.HasPrefix(plan.TruncatedJoinedText, strings.Repeat("a", 300)+"\n"))
}

func TestPlanBudget_EverythingFits(t *testing.T) {
	cfg := BudgetConfig{ModelMaxTokens: 8000, ReservedResponseTokens: 1000, CharsPerToken: 4, MaxPosts: 120}
	posts := postsWithTexts("great goal", "what a save")

	plan := PlanBudget(posts, cfg)

	assert.Equal(t, "great goal\nwhat a save", plan.TruncatedJoinedText)
	assert.Equal(t, 2, plan.PostsKept)
	assert.Equal(t, 0, plan.PostsDropped)
}

func TestPlanBudget_MaxPostsCap(t *testing.T) {
	cfg := BudgetConfig{ModelMaxTokens: 8000, ReservedResponseTokens: 1000, CharsPerToken: 4, MaxPosts: 2}
	posts := postsWithTexts("one", "two", "three", "four")

	plan := PlanBudget(posts, cfg)

	assert.Equal(t, "one\ntwo", plan.TruncatedJoinedText)
	assert.Equal(t, 2, plan.PostsKept)
	assert.Equal(t, 2, plan.PostsDropped)
}

func TestPlanBudget_SkipsBlankPosts(t *testing.T) {
	cfg := BudgetConfig{ModelMaxTokens: 8000, ReservedResponseTokens: 1000, CharsPerToken: 4, MaxPosts: 120}
	posts := postsWithTexts("first", "   ", "last")

	plan := PlanBudget(posts, cfg)

	assert.Equal(t, "first\nlast", plan.TruncatedJoinedText)
	assert.Equal(t, 2, plan.PostsKept)
}

func TestPlanBudget_EmptyCorpus(t *testing.T) {
	cfg := BudgetConfig{ModelMaxTokens: 8000, ReservedResponseTokens: 1000, CharsPerToken: 4, MaxPosts: 120}

	plan := PlanBudget(nil, cfg)

	require.Empty(t, plan.TruncatedJoinedText)
	assert.Zero(t, plan.PostsKept)
	assert.Zero(t, plan.CharsKept)
}

func TestPlanBudget_NoBudget(t *testing.T) {
	cfg := BudgetConfig{ModelMaxTokens: 500, ReservedResponseTokens: 600, CharsPerToken: 1, MaxPosts: 120}

	plan := PlanBudget(postsWithTexts("anything"), cfg)

	assert.Empty(t, plan.TruncatedJoinedText)
	assert.Zero(t, plan.PostsKept)
}
