package account

import "time"

// Platform identifies a social network feed
type Platform string

const (
	PlatformTwitter Platform = "twitter"
	PlatformBluesky Platform = "bluesky"
)

// Profile is an immutable snapshot of a social account, fetched at
// selection time. CreatedAt is nil when the platform never exposes it.
type Profile struct {
	ID             string     `json:"id"`
	Handle         string     `json:"handle"`
	DisplayName    string     `json:"displayName"`
	FollowersCount int64      `json:"followersCount"`
	PostCount      int64      `json:"postCount"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// Key returns the de-duplication key for the profile: native id when
// present, handle otherwise. The same key is used for exclude matching,
// include/base de-duplication and final equality checks.
func (p Profile) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Handle
}

// Eligibility is the derived verdict for a profile. Reasons always carry
// one human-readable line per check performed, pass or fail.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

// SelectedAccount is the unit the analytics pipeline consumes
type SelectedAccount struct {
	Profile     Profile     `json:"profile"`
	Eligibility Eligibility `json:"eligibility"`
}

// IdentifierType tells how an override rule names its account
type IdentifierType string

const (
	IdentifierNativeID IdentifierType = "native_id"
	IdentifierHandle   IdentifierType = "handle"
)

// RuleScope is the reach of an override rule
type RuleScope string

const (
	ScopeGlobal RuleScope = "global"
	ScopeMatch  RuleScope = "match"
)

// RuleKind separates include from exclude overrides
type RuleKind string

const (
	RuleInclude RuleKind = "include"
	RuleExclude RuleKind = "exclude"
)

// OverrideRule is an admin-configured include or exclude of a specific
// account. BypassEligibility is meaningful on include rules only.
type OverrideRule struct {
	ID                string         `db:"id"`
	Platform          Platform       `db:"platform"`
	Kind              RuleKind       `db:"kind"`
	Identifier        string         `db:"identifier"`
	IdentifierType    IdentifierType `db:"identifier_type"`
	Scope             RuleScope      `db:"scope"`
	MatchID           *string        `db:"match_id"`
	BypassEligibility bool           `db:"bypass_eligibility"`
	ExpiresAt         *time.Time     `db:"expires_at"`
	CreatedAt         time.Time      `db:"created_at"`
}

// Expired reports whether the rule is past its expiry at the given time
func (r OverrideRule) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// OverrideSet is the loaded, expiry-filtered rule set for one selection call
type OverrideSet struct {
	Include []OverrideRule
	Exclude []OverrideRule
}
