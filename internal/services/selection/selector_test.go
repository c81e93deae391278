package selection

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/internal/domain/account"
	"matchpulse/pkg/errors"
)

// mockOverrideStore returns a fixed rule set
type mockOverrideStore struct {
	set account.OverrideSet
	err error
}

func (m *mockOverrideStore) GetOverrides(ctx context.Context, platform account.Platform, matchID *string) (account.OverrideSet, error) {
	return m.set, m.err
}

// mockResolver resolves from a fixed map, case-insensitive on handles
type mockResolver struct {
	profiles map[string]account.Profile
	failAll  bool
}

func (m *mockResolver) ResolveProfiles(ctx context.Context, identifiers []string) ([]account.Profile, error) {
	if m.failAll {
		return nil, errors.ErrFeedUnavailable
	}
	var out []account.Profile
	for _, id := range identifiers {
		if p, ok := m.profiles[strings.ToLower(id)]; ok {
			out = append(out, p)
			continue
		}
		for _, p := range m.profiles {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func oldDate() *time.Time {
	t := testNow.Add(-3 * 365 * 24 * time.Hour)
	return &t
}

func profile(id, handle string, followers int64) account.Profile {
	return account.Profile{
		ID:             id,
		Handle:         handle,
		DisplayName:    handle,
		FollowersCount: followers,
		CreatedAt:      oldDate(),
	}
}

func newTestSelector(allowlist []string, store account.OverrideStore, resolver account.Resolver, maxAccounts int) *Selector {
	return NewSelector(
		account.PlatformTwitter,
		allowlist,
		store,
		resolver,
		NewEvaluator(1000, 6),
		maxAccounts,
	).WithClock(func() time.Time { return testNow })
}

func TestSelector_BaseAllowlistFiltering(t *testing.T) {
	resolver := &mockResolver{profiles: map[string]account.Profile{
		"big":   profile("1", "big", 50000),
		"small": profile("2", "small", 10), // fails follower check
		"mid":   profile("3", "mid", 5000),
	}}
	sel := newTestSelector([]string{"big", "small", "mid"}, &mockOverrideStore{}, resolver, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "big", out[0].Profile.Handle, "sorted by descending followers")
	assert.Equal(t, "mid", out[1].Profile.Handle)
	for _, a := range out {
		assert.True(t, a.Eligibility.Eligible)
	}
}

func TestSelector_CapTrimsBaseOnly(t *testing.T) {
	profiles := map[string]account.Profile{}
	var allowlist []string
	for _, h := range []string{"a", "b", "c", "d"} {
		profiles[h] = profile(h, h, 10000)
		allowlist = append(allowlist, h)
	}
	profiles["vip"] = profile("vip", "vip", 2000)

	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:     "vip",
			IdentifierType: account.IdentifierHandle,
			Scope:          account.ScopeGlobal,
		}},
	}}
	sel := newTestSelector(allowlist, store, &mockResolver{profiles: profiles}, 3)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	// The include survives the cap even though every base account
	// outranks it on followers.
	handles := []string{out[0].Profile.Handle, out[1].Profile.Handle, out[2].Profile.Handle}
	assert.Contains(t, handles, "vip")
}

func TestSelector_ExcludeWinsOverInclude(t *testing.T) {
	resolver := &mockResolver{profiles: map[string]account.Profile{
		"target": profile("42", "target", 9000),
	}}
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:        "target",
			IdentifierType:    account.IdentifierHandle,
			BypassEligibility: true,
		}},
		Exclude: []account.OverrideRule{{
			Identifier:     "42",
			IdentifierType: account.IdentifierNativeID,
		}},
	}}
	sel := newTestSelector(nil, store, resolver, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out, "exclude always wins over include for the same account")
}

func TestSelector_BypassEligibility(t *testing.T) {
	resolver := &mockResolver{profiles: map[string]account.Profile{
		"tiny": profile("7", "tiny", 3), // would fail every check
	}}
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:        "tiny",
			IdentifierType:    account.IdentifierHandle,
			BypassEligibility: true,
		}},
	}}
	sel := newTestSelector(nil, store, resolver, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Eligibility.Eligible)
	assert.Equal(t, []string{"admin:include override (bypass=true)"}, out[0].Eligibility.Reasons)
}

func TestSelector_IncludeWithoutBypassStillEvaluated(t *testing.T) {
	resolver := &mockResolver{profiles: map[string]account.Profile{
		"tiny": profile("7", "tiny", 3),
	}}
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:     "tiny",
			IdentifierType: account.IdentifierHandle,
		}},
	}}
	sel := newTestSelector(nil, store, resolver, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out, "non-bypass include still runs the evaluator")
}

func TestSelector_SynthesizedProfileOnResolutionFailure(t *testing.T) {
	// Resolver knows nothing: the include must still appear, synthesized
	// from the rule's identifier, when bypass is set.
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:        "ghost",
			IdentifierType:    account.IdentifierHandle,
			BypassEligibility: true,
		}},
	}}
	sel := newTestSelector(nil, store, &mockResolver{profiles: nil}, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ghost", out[0].Profile.Handle)
	assert.Equal(t, "ghost", out[0].Profile.DisplayName)
	assert.Empty(t, out[0].Profile.ID)
	assert.Nil(t, out[0].Profile.CreatedAt)
}

func TestSelector_DeduplicatesIncludeAndBase(t *testing.T) {
	resolver := &mockResolver{profiles: map[string]account.Profile{
		"star": profile("9", "star", 20000),
	}}
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:     "9",
			IdentifierType: account.IdentifierNativeID,
		}},
	}}
	sel := newTestSelector([]string{"star"}, store, resolver, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, out, 1, "same account via include and allowlist appears once")
}

func TestSelector_AllowlistResolutionFailureNotFatal(t *testing.T) {
	store := &mockOverrideStore{set: account.OverrideSet{
		Include: []account.OverrideRule{{
			Identifier:        "vip",
			IdentifierType:    account.IdentifierHandle,
			BypassEligibility: true,
		}},
	}}
	sel := newTestSelector([]string{"a", "b"}, store, &mockResolver{failAll: true}, 20)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "vip", out[0].Profile.Handle)
}

func TestSelector_OutputNeverExceedsCap(t *testing.T) {
	profiles := map[string]account.Profile{}
	var allowlist []string
	for _, h := range []string{"p1", "p2", "p3", "p4", "p5", "p6"} {
		profiles[h] = profile(h, h, 10000)
		allowlist = append(allowlist, h)
	}
	sel := newTestSelector(allowlist, &mockOverrideStore{}, &mockResolver{profiles: profiles}, 4)

	out, err := sel.Select(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, out, 4)
}
