package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"matchpulse/internal/domain/account"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluator_FollowerCheck(t *testing.T) {
	eval := NewEvaluator(1000, 6)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-365 * 24 * time.Hour)

	tests := []struct {
		name      string
		followers int64
		eligible  bool
	}{
		{"well above threshold", 50000, true},
		{"exactly at threshold", 1000, true},
		{"below threshold", 999, false},
		{"zero followers", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := account.Profile{
				ID:             "1",
				Handle:         "acct",
				FollowersCount: tt.followers,
				CreatedAt:      timePtr(created),
			}
			elig := eval.Evaluate(p, now)
			assert.Equal(t, tt.eligible, elig.Eligible)
			assert.Len(t, elig.Reasons, 2, "one reason per check performed")
			if !tt.eligible {
				assert.Contains(t, elig.Reasons[0], "<")
			}
		})
	}
}

func TestEvaluator_AgeCheck(t *testing.T) {
	eval := NewEvaluator(1000, 6)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("young account is ineligible", func(t *testing.T) {
		p := account.Profile{
			ID:             "1",
			Handle:         "newbie",
			FollowersCount: 5000,
			CreatedAt:      timePtr(now.Add(-60 * 24 * time.Hour)), // ~2 months
		}
		elig := eval.Evaluate(p, now)
		assert.False(t, elig.Eligible)
		assert.Contains(t, elig.Reasons[1], "account age")
		assert.Contains(t, elig.Reasons[1], "<")
	})

	t.Run("old account passes", func(t *testing.T) {
		p := account.Profile{
			ID:             "1",
			Handle:         "veteran",
			FollowersCount: 5000,
			CreatedAt:      timePtr(now.Add(-400 * 24 * time.Hour)),
		}
		elig := eval.Evaluate(p, now)
		assert.True(t, elig.Eligible)
	})

	t.Run("unknown age is disclosed but never penalized", func(t *testing.T) {
		p := account.Profile{
			ID:             "1",
			Handle:         "mystery",
			FollowersCount: 5000,
			CreatedAt:      nil,
		}
		elig := eval.Evaluate(p, now)
		assert.True(t, elig.Eligible)
		assert.Contains(t, elig.Reasons[1], "unknown")
	})

	t.Run("unknown age does not rescue a follower failure", func(t *testing.T) {
		p := account.Profile{
			ID:             "1",
			Handle:         "small",
			FollowersCount: 10,
			CreatedAt:      nil,
		}
		elig := eval.Evaluate(p, now)
		assert.False(t, elig.Eligible)
	})
}

func TestEvaluator_MonthApproximation(t *testing.T) {
	eval := NewEvaluator(0, 6)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// 179 days is 5 full 30-day months: still too young.
	p := account.Profile{
		Handle:         "edge",
		FollowersCount: 1,
		CreatedAt:      timePtr(now.Add(-179 * 24 * time.Hour)),
	}
	assert.False(t, eval.Evaluate(p, now).Eligible)

	// 180 days crosses the 6-month line.
	p.CreatedAt = timePtr(now.Add(-180 * 24 * time.Hour))
	assert.True(t, eval.Evaluate(p, now).Eligible)
}
