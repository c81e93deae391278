package selection

import (
	"fmt"
	"time"

	"matchpulse/internal/domain/account"
)

// monthApprox is the account-age month approximation used by the
// eligibility rules.
const monthApprox = 30 * 24 * time.Hour

// Evaluator applies the follower-count and account-age eligibility checks.
// Pure and deterministic given now; no side effects.
type Evaluator struct {
	minFollowers     int64
	minAccountMonths int
}

// NewEvaluator creates an evaluator with the configured thresholds
func NewEvaluator(minFollowers int64, minAccountMonths int) *Evaluator {
	return &Evaluator{
		minFollowers:     minFollowers,
		minAccountMonths: minAccountMonths,
	}
}

// Evaluate runs both checks against a profile snapshot. Each check
// contributes exactly one reason line whether it passes or fails; an
// unknown creation date adds a disclosure line and never penalizes.
func (e *Evaluator) Evaluate(p account.Profile, now time.Time) account.Eligibility {
	reasons := make([]string, 0, 3)

	followersOK := p.FollowersCount >= e.minFollowers
	if followersOK {
		reasons = append(reasons, fmt.Sprintf("followers: %d >= %d required", p.FollowersCount, e.minFollowers))
	} else {
		reasons = append(reasons, fmt.Sprintf("followers: %d < %d required", p.FollowersCount, e.minFollowers))
	}

	ageOK := true
	ageUnknown := p.CreatedAt == nil
	if ageUnknown {
		reasons = append(reasons, "account age: unknown (platform does not expose creation date), check skipped")
	} else {
		months := int(now.Sub(*p.CreatedAt) / monthApprox)
		ageOK = months >= e.minAccountMonths
		if ageOK {
			reasons = append(reasons, fmt.Sprintf("account age: %d months >= %d required", months, e.minAccountMonths))
		} else {
			reasons = append(reasons, fmt.Sprintf("account age: %d months < %d required", months, e.minAccountMonths))
		}
	}

	return account.Eligibility{
		Eligible: followersOK && (ageOK || ageUnknown),
		Reasons:  reasons,
	}
}
