package account

import "context"

// OverrideStore loads admin override rules. Implementations must drop
// expired rules before returning; the selector never re-checks expiry.
type OverrideStore interface {
	// GetOverrides returns rules scoped to {global} plus, when matchID is
	// non-nil, {match_id}. Already filtered for expiry.
	GetOverrides(ctx context.Context, platform Platform, matchID *string) (OverrideSet, error)
}

// Resolver turns account identifiers (native ids or handles) into profile
// snapshots. Batch lookup with partial results: unresolvable identifiers
// are omitted, not errors.
type Resolver interface {
	ResolveProfiles(ctx context.Context, identifiers []string) ([]Profile, error)
}

// ProfileCache is an optional read-through cache in front of a Resolver
type ProfileCache interface {
	GetProfile(ctx context.Context, platform Platform, identifier string) (*Profile, error)
	PutProfile(ctx context.Context, platform Platform, identifier string, profile Profile) error
}
