package post

import (
	"context"
	"time"

	"matchpulse/internal/domain/account"
)

// MaxPostsPerAuthor bounds the per-author fetch cost against upstream APIs
const MaxPostsPerAuthor = 25

// FeedSource is the per-platform capability the core consumes. One
// implementation per platform; failures on individual accounts must be
// isolated by the caller, not by the source.
type FeedSource interface {
	account.Resolver

	// FetchRecentPosts returns text-only, non-reply posts from the given
	// actors created within the lookback window, most recent first is not
	// guaranteed. Per-author results are capped at MaxPostsPerAuthor.
	FetchRecentPosts(ctx context.Context, actorIdentifiers []string, lookback time.Duration) ([]Post, error)
}
