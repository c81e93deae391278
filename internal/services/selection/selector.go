package selection

import (
	"context"
	"sort"
	"strings"
	"time"

	"matchpulse/internal/domain/account"
	"matchpulse/pkg/logger"
)

// bypassReason is recorded for include rules that skip the evaluator
const bypassReason = "admin:include override (bypass=true)"

// Selector merges the platform allowlist with admin overrides into a
// ranked, capped account list. One instance per platform.
type Selector struct {
	platform    account.Platform
	allowlist   []string
	overrides   account.OverrideStore
	resolver    account.Resolver
	evaluator   *Evaluator
	maxAccounts int
	now         func() time.Time
	log         *logger.Logger
}

// NewSelector creates a selector for one platform. The resolver is the
// profile-lookup capability (usually the platform's feed source, possibly
// cache-wrapped).
func NewSelector(
	platform account.Platform,
	allowlist []string,
	overrides account.OverrideStore,
	resolver account.Resolver,
	evaluator *Evaluator,
	maxAccounts int,
) *Selector {
	return &Selector{
		platform:    platform,
		allowlist:   allowlist,
		overrides:   overrides,
		resolver:    resolver,
		evaluator:   evaluator,
		maxAccounts: maxAccounts,
		now:         time.Now,
		log:         logger.Get().With("component", "selector", "platform", string(platform)),
	}
}

// WithClock replaces the time source, for tests
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// selected tags each candidate with its origin so the cap can trim base
// accounts only.
type selected struct {
	acct        account.SelectedAccount
	fromInclude bool
}

// Select produces the ordered, capped account list for one tick.
// Per-identifier resolution failures are skipped, never fatal.
func (s *Selector) Select(ctx context.Context, matchID *string) ([]account.SelectedAccount, error) {
	now := s.now()

	set, err := s.overrides.GetOverrides(ctx, s.platform, matchID)
	if err != nil {
		return nil, err
	}

	excludedIDs := make(map[string]bool)
	excludedHandles := make(map[string]bool)
	for _, rule := range set.Exclude {
		if rule.IdentifierType == account.IdentifierNativeID {
			excludedIDs[rule.Identifier] = true
		} else {
			excludedHandles[strings.ToLower(rule.Identifier)] = true
		}
	}
	excluded := func(p account.Profile) bool {
		if p.ID != "" && excludedIDs[p.ID] {
			return true
		}
		return excludedHandles[strings.ToLower(p.Handle)]
	}

	// Base allowlist profiles; partial results tolerated.
	baseProfiles, err := s.resolver.ResolveProfiles(ctx, s.allowlist)
	if err != nil {
		s.log.Warnf("Allowlist resolution degraded: %v", err)
		baseProfiles = nil
	}

	// Include rules resolve through the same batch lookup; a rule whose
	// identifier cannot be resolved still yields a synthesized minimal
	// profile so an explicit admin include is never silently dropped.
	includeIdentifiers := make([]string, 0, len(set.Include))
	for _, rule := range set.Include {
		includeIdentifiers = append(includeIdentifiers, rule.Identifier)
	}
	includeProfiles := map[string]account.Profile{}
	if len(includeIdentifiers) > 0 {
		resolved, err := s.resolver.ResolveProfiles(ctx, includeIdentifiers)
		if err != nil {
			s.log.Warnf("Include rule resolution degraded: %v", err)
		}
		for _, p := range resolved {
			if p.ID != "" {
				includeProfiles[p.ID] = p
			}
			includeProfiles[strings.ToLower(p.Handle)] = p
		}
	}

	merged := make([]selected, 0, len(set.Include)+len(baseProfiles))
	seen := make(map[string]bool)

	for _, rule := range set.Include {
		profile, ok := includeProfiles[rule.Identifier]
		if !ok {
			profile, ok = includeProfiles[strings.ToLower(rule.Identifier)]
		}
		if !ok {
			profile = synthesizeProfile(rule)
		}
		if excluded(profile) {
			continue
		}
		if seen[profile.Key()] {
			continue
		}

		var elig account.Eligibility
		if rule.BypassEligibility {
			elig = account.Eligibility{Eligible: true, Reasons: []string{bypassReason}}
		} else {
			elig = s.evaluator.Evaluate(profile, now)
			if !elig.Eligible {
				continue
			}
		}

		seen[profile.Key()] = true
		merged = append(merged, selected{
			acct:        account.SelectedAccount{Profile: profile, Eligibility: elig},
			fromInclude: true,
		})
	}

	for _, profile := range baseProfiles {
		if excluded(profile) || seen[profile.Key()] {
			continue
		}
		elig := s.evaluator.Evaluate(profile, now)
		if !elig.Eligible {
			continue
		}
		seen[profile.Key()] = true
		merged = append(merged, selected{
			acct: account.SelectedAccount{Profile: profile, Eligibility: elig},
		})
	}

	// Stable sort the whole merged list by descending follower count;
	// include-derived entries keep precedence on ties.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].acct.Profile.FollowersCount > merged[j].acct.Profile.FollowersCount
	})

	// Cap trims the base slice only: an explicit admin include is never
	// truncated away, even when includes alone exceed the cap.
	includeCount := 0
	for _, m := range merged {
		if m.fromInclude {
			includeCount++
		}
	}
	baseBudget := s.maxAccounts - includeCount

	out := make([]account.SelectedAccount, 0, len(merged))
	for _, m := range merged {
		if m.fromInclude {
			out = append(out, m.acct)
			continue
		}
		if baseBudget > 0 {
			out = append(out, m.acct)
			baseBudget--
		}
	}

	return out, nil
}

// synthesizeProfile builds a minimal profile from an include rule whose
// identifier failed to resolve
func synthesizeProfile(rule account.OverrideRule) account.Profile {
	profile := account.Profile{
		Handle:      rule.Identifier,
		DisplayName: rule.Identifier,
	}
	if rule.IdentifierType == account.IdentifierNativeID {
		profile.ID = rule.Identifier
	}
	return profile
}
