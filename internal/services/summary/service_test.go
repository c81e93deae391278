package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
	"matchpulse/internal/services/window"
	"matchpulse/pkg/errors"
)

type stubSelector struct {
	accounts []account.SelectedAccount
	err      error
}

func (s *stubSelector) Select(ctx context.Context, matchID *string) ([]account.SelectedAccount, error) {
	return s.accounts, s.err
}

type stubFeed struct {
	posts []post.Post
	err   error
}

func (f *stubFeed) ResolveProfiles(ctx context.Context, identifiers []string) ([]account.Profile, error) {
	return nil, nil
}

func (f *stubFeed) FetchRecentPosts(ctx context.Context, actors []string, lookback time.Duration) ([]post.Post, error) {
	return f.posts, f.err
}

type stubProvider struct {
	text       string
	err        error
	lastPrompt string
}

func (p *stubProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	p.lastPrompt = userPrompt
	return p.text, p.err
}

type memoryRecorder struct {
	audits []*analytics.SummaryAudit
}

func (r *memoryRecorder) InsertTickSnapshot(ctx context.Context, s *analytics.TickSummary) error {
	return nil
}

func (r *memoryRecorder) InsertSummaryAudit(ctx context.Context, a *analytics.SummaryAudit) error {
	r.audits = append(r.audits, a)
	return nil
}

type memoryAlerter struct {
	messages []string
}

func (a *memoryAlerter) Alert(ctx context.Context, message string) error {
	a.messages = append(a.messages, message)
	return nil
}

func defaultBudget() BudgetConfig {
	return BudgetConfig{ModelMaxTokens: 8000, ReservedResponseTokens: 1000, CharsPerToken: 4, MaxPosts: 120}
}

func selectedAccounts() []account.SelectedAccount {
	return []account.SelectedAccount{{
		Profile:     account.Profile{ID: "1", Handle: "fan", FollowersCount: 5000},
		Eligibility: account.Eligibility{Eligible: true},
	}}
}

func summaryRequest() Request {
	return Request{
		MatchID:  "m1",
		Platform: account.PlatformTwitter,
		HomeTeam: "Arsenal",
		AwayTeam: "Spurs",
	}
}

func TestService_HappyPath(t *testing.T) {
	recorder := &memoryRecorder{}
	provider := &stubProvider{text: "Fans are elated after a derby win."}
	svc := NewService(
		&stubSelector{accounts: selectedAccounts()},
		&stubFeed{posts: []post.Post{{ID: "p1", Text: "what a goal"}}},
		window.NewClock(window.Config{}),
		provider,
		NewFixedWindowLimiter(10, time.Minute),
		defaultBudget(),
		recorder,
		&memoryAlerter{},
	)

	res, err := svc.Summarize(context.Background(), summaryRequest())

	require.NoError(t, err)
	assert.Equal(t, "Fans are elated after a derby win.", res.Summary)
	assert.Equal(t, 1, res.PostsUsed)
	assert.Equal(t, "what a goal", provider.lastPrompt)

	require.Len(t, recorder.audits, 1)
	assert.Equal(t, "ok", recorder.audits[0].Status)
	assert.Equal(t, "m1", recorder.audits[0].MatchID)
}

func TestService_RateLimited(t *testing.T) {
	recorder := &memoryRecorder{}
	provider := &stubProvider{text: "ok"}
	svc := NewService(
		&stubSelector{accounts: selectedAccounts()},
		&stubFeed{posts: []post.Post{{ID: "p1", Text: "x"}}},
		window.NewClock(window.Config{}),
		provider,
		NewFixedWindowLimiter(1, time.Minute),
		defaultBudget(),
		recorder,
		&memoryAlerter{},
	)

	_, err := svc.Summarize(context.Background(), summaryRequest())
	require.NoError(t, err)

	_, err = svc.Summarize(context.Background(), summaryRequest())
	require.ErrorIs(t, err, errors.ErrRateLimitExceeded)

	require.Len(t, recorder.audits, 2)
	assert.Equal(t, "rate_limited", recorder.audits[1].Status)
}

func TestService_UpstreamFailureAlertsWithoutRetry(t *testing.T) {
	recorder := &memoryRecorder{}
	alerter := &memoryAlerter{}
	provider := &stubProvider{err: errors.New("model overloaded")}
	svc := NewService(
		&stubSelector{accounts: selectedAccounts()},
		&stubFeed{posts: []post.Post{{ID: "p1", Text: "x"}}},
		window.NewClock(window.Config{}),
		provider,
		NewFixedWindowLimiter(10, time.Minute),
		defaultBudget(),
		recorder,
		alerter,
	)

	_, err := svc.Summarize(context.Background(), summaryRequest())

	require.ErrorIs(t, err, errors.ErrSummarizerUnavailable)
	require.Len(t, recorder.audits, 1)
	assert.Equal(t, "upstream_error", recorder.audits[0].Status)
	assert.Contains(t, recorder.audits[0].ErrorDetail, "model overloaded")
	require.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "m1")
}

func TestService_FeedFailureIsUpstreamError(t *testing.T) {
	recorder := &memoryRecorder{}
	svc := NewService(
		&stubSelector{accounts: selectedAccounts()},
		&stubFeed{err: errors.ErrFeedUnavailable},
		window.NewClock(window.Config{}),
		&stubProvider{text: "never called"},
		NewFixedWindowLimiter(10, time.Minute),
		defaultBudget(),
		recorder,
		&memoryAlerter{},
	)

	_, err := svc.Summarize(context.Background(), summaryRequest())

	require.ErrorIs(t, err, errors.ErrSummarizerUnavailable)
	require.Len(t, recorder.audits, 1)
	assert.Equal(t, "upstream_error", recorder.audits[0].Status)
}
