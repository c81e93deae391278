package selection

import (
	"context"

	"matchpulse/internal/domain/account"
	"matchpulse/pkg/logger"
)

// CachedResolver wraps a Resolver with a short-TTL profile cache. Cache
// failures degrade to direct resolution; they are never surfaced.
type CachedResolver struct {
	platform account.Platform
	inner    account.Resolver
	cache    account.ProfileCache
	log      *logger.Logger
}

// NewCachedResolver creates a read-through caching resolver
func NewCachedResolver(platform account.Platform, inner account.Resolver, cache account.ProfileCache) *CachedResolver {
	return &CachedResolver{
		platform: platform,
		inner:    inner,
		cache:    cache,
		log:      logger.Get().With("component", "cached_resolver", "platform", string(platform)),
	}
}

// ResolveProfiles serves cached snapshots where possible and resolves the
// remainder in one batch, back-filling the cache best-effort.
func (r *CachedResolver) ResolveProfiles(ctx context.Context, identifiers []string) ([]account.Profile, error) {
	profiles := make([]account.Profile, 0, len(identifiers))
	missing := make([]string, 0, len(identifiers))

	for _, id := range identifiers {
		cached, err := r.cache.GetProfile(ctx, r.platform, id)
		if err != nil || cached == nil {
			missing = append(missing, id)
			continue
		}
		profiles = append(profiles, *cached)
	}

	if len(missing) == 0 {
		return profiles, nil
	}

	resolved, err := r.inner.ResolveProfiles(ctx, missing)
	if err != nil {
		// Partial results still count; the cache hits stand on their own.
		if len(profiles) > 0 {
			r.log.Warnf("Resolver degraded, serving %d cached profiles: %v", len(profiles), err)
			return profiles, nil
		}
		return nil, err
	}

	// Store under both the native id and the handle so either identifier
	// form hits on the next pass.
	for i, p := range resolved {
		cacheErr := r.cache.PutProfile(ctx, r.platform, p.Key(), p)
		if cacheErr == nil && p.Handle != "" && p.Handle != p.Key() {
			cacheErr = r.cache.PutProfile(ctx, r.platform, p.Handle, p)
		}
		if cacheErr != nil && i == 0 {
			r.log.Debugf("Profile cache write failed: %v", cacheErr)
		}
	}

	return append(profiles, resolved...), nil
}
