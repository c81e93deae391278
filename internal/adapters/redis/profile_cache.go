package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"matchpulse/internal/domain/account"
	"matchpulse/pkg/errors"
)

// Compile-time check
var _ account.ProfileCache = (*ProfileCache)(nil)

// ProfileCache is a short-TTL read-through cache of resolved profiles.
// Cache errors are surfaced to the caller, which treats them as misses.
type ProfileCache struct {
	client *Client
	ttl    time.Duration
}

// NewProfileCache creates a profile cache with the given TTL
func NewProfileCache(client *Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func cacheKey(platform account.Platform, identifier string) string {
	return fmt.Sprintf("profile:%s:%s", platform, identifier)
}

// GetProfile returns the cached profile or ErrNotFound on a miss
func (c *ProfileCache) GetProfile(ctx context.Context, platform account.Platform, identifier string) (*account.Profile, error) {
	var p account.Profile
	err := c.client.Get(ctx, cacheKey(platform, identifier), &p)
	if err == goredis.Nil {
		return nil, errors.Wrap(errors.ErrNotFound, "profile not cached")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PutProfile stores a resolved profile snapshot
func (c *ProfileCache) PutProfile(ctx context.Context, platform account.Platform, identifier string, profile account.Profile) error {
	return c.client.Set(ctx, cacheKey(platform, identifier), profile, c.ttl)
}
