// Package summary builds character-budgeted post corpora and produces
// on-demand AI match summaries over them.
package summary

import (
	"strings"

	"matchpulse/internal/domain/post"
)

// BudgetConfig sizes the prompt corpus against the model's context
// window. Token estimation is chars/charsPerToken; exact tokenization
// is not worth a tokenizer dependency here.
type BudgetConfig struct {
	ModelMaxTokens         int
	ReservedResponseTokens int
	CharsPerToken          int
	MaxPosts               int
}

// Plan is the truncated corpus handed to the chat provider
type Plan struct {
	TruncatedJoinedText string
	PostsKept           int
	CharsKept           int
	PostsDropped        int
}

// PlanBudget joins post texts newline-separated, newest first as given,
// keeping at most cfg.MaxPosts posts and hard-cutting the joined text at
// (ModelMaxTokens - ReservedResponseTokens) * CharsPerToken characters.
// A post that does not fit entirely is cut mid-text rather than dropped,
// so the budget is always used fully.
func PlanBudget(posts []post.Post, cfg BudgetConfig) Plan {
	availableChars := (cfg.ModelMaxTokens - cfg.ReservedResponseTokens) * cfg.CharsPerToken
	if availableChars < 0 {
		availableChars = 0
	}

	capped := posts
	if cfg.MaxPosts > 0 && len(capped) > cfg.MaxPosts {
		capped = capped[:cfg.MaxPosts]
	}

	var b strings.Builder
	kept := 0
	for _, p := range capped {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		line := text
		if b.Len() > 0 {
			line = "\n" + text
		}
		if b.Len()+len(line) > availableChars {
			remaining := availableChars - b.Len()
			if remaining > len("\n") || (b.Len() == 0 && remaining > 0) {
				b.WriteString(line[:remaining])
				kept++
			}
			break
		}
		b.WriteString(line)
		kept++
	}

	return Plan{
		TruncatedJoinedText: b.String(),
		PostsKept:           kept,
		CharsKept:           b.Len(),
		PostsDropped:        len(posts) - kept,
	}
}
