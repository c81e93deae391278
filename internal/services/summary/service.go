package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/post"
	"matchpulse/internal/metrics"
	"matchpulse/internal/services/window"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

const (
	auditStatusOK            = "ok"
	auditStatusRateLimited   = "rate_limited"
	auditStatusUpstreamError = "upstream_error"
)

// ChatProvider is the AI completion backend. One blocking call per
// summary, no retries at this layer.
type ChatProvider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AccountSelector mirrors the stream generator's selection dependency
type AccountSelector interface {
	Select(ctx context.Context, matchID *string) ([]account.SelectedAccount, error)
}

// Request describes one on-demand summary
type Request struct {
	MatchID         string
	Platform        account.Platform
	HomeTeam        string
	AwayTeam        string
	KickoffISO      string
	FinalWhistleISO string
	LiveDurationMin int
}

// Result is a produced summary together with corpus accounting
type Result struct {
	Summary   string `json:"summary"`
	PostsUsed int    `json:"postsUsed"`
	CharsUsed int    `json:"charsUsed"`
}

// Service produces AI match summaries over the same selected-account
// corpus the tick stream uses. Requests past the rate limit fail fast
// with ErrRateLimitExceeded; upstream failures are audited and alerted,
// never retried.
type Service struct {
	selector AccountSelector
	feed     post.FeedSource
	clock    window.Clock
	provider ChatProvider
	limiter  *FixedWindowLimiter
	budget   BudgetConfig
	recorder analytics.Recorder
	alerter  analytics.Alerter
	log      *logger.Logger
}

func NewService(
	selector AccountSelector,
	feed post.FeedSource,
	clock window.Clock,
	provider ChatProvider,
	limiter *FixedWindowLimiter,
	budget BudgetConfig,
	recorder analytics.Recorder,
	alerter analytics.Alerter,
) *Service {
	return &Service{
		selector: selector,
		feed:     feed,
		clock:    clock,
		provider: provider,
		limiter:  limiter,
		budget:   budget,
		recorder: recorder,
		alerter:  alerter,
		log:      logger.Get().With("component", "summarizer"),
	}
}

// Summarize runs the full path: rate gate, selection, fetch, budget,
// completion. The audit row is written on every outcome.
func (s *Service) Summarize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := s.log.With("match_id", req.MatchID, "platform", string(req.Platform))

	if !s.limiter.Allow() {
		metrics.SummarizeRequests.WithLabelValues(auditStatusRateLimited).Inc()
		s.audit(ctx, req, auditStatusRateLimited, Plan{}, start, errors.ErrRateLimitExceeded)
		return nil, errors.ErrRateLimitExceeded
	}

	plan, err := s.buildCorpus(ctx, req, time.Now())
	if err != nil {
		metrics.SummarizeRequests.WithLabelValues(auditStatusUpstreamError).Inc()
		s.audit(ctx, req, auditStatusUpstreamError, Plan{}, start, err)
		s.alert(ctx, req, err)
		return nil, errors.Wrap(errors.ErrSummarizerUnavailable, err.Error())
	}

	text, err := s.provider.Complete(ctx, s.systemPrompt(req), plan.TruncatedJoinedText)
	if err != nil {
		log.Errorf("Chat provider failed: %v", err)
		metrics.SummarizeRequests.WithLabelValues(auditStatusUpstreamError).Inc()
		s.audit(ctx, req, auditStatusUpstreamError, plan, start, err)
		s.alert(ctx, req, err)
		return nil, errors.Wrap(errors.ErrSummarizerUnavailable, err.Error())
	}

	metrics.SummarizeRequests.WithLabelValues(auditStatusOK).Inc()
	s.audit(ctx, req, auditStatusOK, plan, start, nil)
	log.Info("Summary produced", "posts_kept", plan.PostsKept, "chars_kept", plan.CharsKept)

	return &Result{
		Summary:   text,
		PostsUsed: plan.PostsKept,
		CharsUsed: plan.CharsKept,
	}, nil
}

func (s *Service) buildCorpus(ctx context.Context, req Request, now time.Time) (Plan, error) {
	accounts, err := s.selector.Select(ctx, &req.MatchID)
	if err != nil {
		return Plan{}, errors.Wrap(err, "select accounts")
	}

	identifiers := make([]string, 0, len(accounts))
	for _, a := range accounts {
		identifiers = append(identifiers, a.Profile.Key())
	}

	var posts []post.Post
	if len(identifiers) > 0 {
		lookback := s.clock.Lookback(req.KickoffISO, req.FinalWhistleISO, req.LiveDurationMin, now)
		posts, err = s.feed.FetchRecentPosts(ctx, identifiers, lookback)
		if err != nil {
			return Plan{}, errors.Wrap(err, "fetch posts")
		}
	}

	return PlanBudget(posts, s.budget), nil
}

func (s *Service) systemPrompt(req Request) string {
	return fmt.Sprintf(
		"You are a football analyst. Summarize fan reaction to %s vs %s "+
			"from the posts below in 3-4 sentences. Mention the overall mood "+
			"and the most discussed moments. Do not invent events.",
		req.HomeTeam, req.AwayTeam,
	)
}

func (s *Service) audit(ctx context.Context, req Request, status string, plan Plan, start time.Time, cause error) {
	if s.recorder == nil {
		return
	}
	audit := &analytics.SummaryAudit{
		ID:          uuid.NewString(),
		MatchID:     req.MatchID,
		Platform:    string(req.Platform),
		Status:      status,
		PostsKept:   plan.PostsKept,
		CharsKept:   plan.CharsKept,
		DurationMs:  time.Since(start).Milliseconds(),
		RequestedAt: start,
	}
	if cause != nil {
		audit.ErrorDetail = cause.Error()
	}
	if err := s.recorder.InsertSummaryAudit(ctx, audit); err != nil {
		s.log.Warnf("Summary audit write failed: %v", err)
	}
}

func (s *Service) alert(ctx context.Context, req Request, cause error) {
	if s.alerter == nil {
		return
	}
	msg := fmt.Sprintf("Summarizer upstream failure for match %s (%s): %v", req.MatchID, req.Platform, cause)
	if err := s.alerter.Alert(ctx, msg); err != nil {
		s.log.Warnf("Alert delivery failed: %v", err)
	}
}
