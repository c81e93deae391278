// Package twitter implements the Twitter/X feed source over the v2 API.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"matchpulse/internal/adapters/feeds/ratelimit"
	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/post"
	"matchpulse/internal/metrics"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	platformLabel  = "twitter"
)

var _ post.FeedSource = (*Source)(nil)

// Source talks to the Twitter v2 API with bearer auth. Per-author
// timeline failures are isolated: the failing author contributes zero
// posts and the batch continues.
type Source struct {
	baseURL     string
	bearerToken string
	client      *http.Client
	limiter     *ratelimit.Limiter
	log         *logger.Logger
}

func NewSource(bearerToken string, requestsPerMinute int) *Source {
	return &Source{
		baseURL:     defaultBaseURL,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 15 * time.Second},
		limiter:     ratelimit.NewLimiter(platformLabel, requestsPerMinute),
		log:         logger.Get().With("component", "twitter_source"),
	}
}

// WithBaseURL overrides the API host, for tests
func (s *Source) WithBaseURL(baseURL string) *Source {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// isNativeID reports whether the identifier looks like a numeric user id
// rather than a handle
func isNativeID(identifier string) bool {
	if identifier == "" {
		return false
	}
	for _, r := range identifier {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveProfiles looks up identifiers in two batches, ids and handles,
// and returns whatever resolved. Unknown identifiers are absent from the
// result rather than failing the call.
func (s *Source) ResolveProfiles(ctx context.Context, identifiers []string) ([]account.Profile, error) {
	var ids, handles []string
	for _, ident := range identifiers {
		if isNativeID(ident) {
			ids = append(ids, ident)
		} else {
			handles = append(handles, strings.TrimPrefix(ident, "@"))
		}
	}

	var profiles []account.Profile
	if len(ids) > 0 {
		batch, err := s.lookupUsers(ctx, "/2/users", url.Values{"ids": {strings.Join(ids, ",")}})
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, batch...)
	}
	if len(handles) > 0 {
		batch, err := s.lookupUsers(ctx, "/2/users/by", url.Values{"usernames": {strings.Join(handles, ",")}})
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, batch...)
	}
	return profiles, nil
}

func (s *Source) lookupUsers(ctx context.Context, path string, params url.Values) ([]account.Profile, error) {
	params.Set("user.fields", "created_at,public_metrics")

	start := time.Now()
	body, err := s.get(ctx, path, params)
	if err != nil {
		metrics.ObserveFeedRequest(platformLabel, "resolve_profiles", "error", start)
		return nil, err
	}
	metrics.ObserveFeedRequest(platformLabel, "resolve_profiles", "ok", start)

	var payload struct {
		Data []userObject `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal user lookup")
	}

	profiles := make([]account.Profile, 0, len(payload.Data))
	for _, u := range payload.Data {
		profile := account.Profile{
			ID:             u.ID,
			Handle:         u.Username,
			DisplayName:    u.Name,
			FollowersCount: u.PublicMetrics.FollowersCount,
			PostCount:      u.PublicMetrics.TweetCount,
		}
		if ts, ok := parseCreatedAt(u.CreatedAt); ok {
			profile.CreatedAt = &ts
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// FetchRecentPosts fetches each author's timeline independently. An
// author whose fetch fails is logged and skipped.
func (s *Source) FetchRecentPosts(ctx context.Context, actorIdentifiers []string, lookback time.Duration) ([]post.Post, error) {
	startTime := time.Now().Add(-lookback).UTC().Format(time.RFC3339)

	var all []post.Post
	for _, ident := range actorIdentifiers {
		posts, err := s.fetchAuthorTimeline(ctx, ident, startTime)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			s.log.Warnf("Timeline fetch failed for %s: %v", ident, err)
			continue
		}
		all = append(all, posts...)
	}
	return all, nil
}

func (s *Source) fetchAuthorTimeline(ctx context.Context, identifier, startTime string) ([]post.Post, error) {
	userID := identifier
	if !isNativeID(identifier) {
		resolved, err := s.lookupUsers(ctx, "/2/users/by", url.Values{"usernames": {strings.TrimPrefix(identifier, "@")}})
		if err != nil {
			return nil, err
		}
		if len(resolved) == 0 {
			return nil, errors.Wrapf(errors.ErrProfileNotFound, "handle %s", identifier)
		}
		userID = resolved[0].ID
	}

	params := url.Values{
		"max_results":  {fmt.Sprintf("%d", post.MaxPostsPerAuthor)},
		"start_time":   {startTime},
		"exclude":      {"replies,retweets"},
		"tweet.fields": {"created_at,author_id"},
	}

	start := time.Now()
	body, err := s.get(ctx, "/2/users/"+userID+"/tweets", params)
	if err != nil {
		metrics.ObserveFeedRequest(platformLabel, "fetch_posts", "error", start)
		return nil, err
	}
	metrics.ObserveFeedRequest(platformLabel, "fetch_posts", "ok", start)

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal timeline")
	}

	posts := parseFeedItems(payload.Data, post.Author{ID: userID})
	if len(posts) > post.MaxPostsPerAuthor {
		posts = posts[:post.MaxPostsPerAuthor]
	}
	return posts, nil
}

func (s *Source) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if s.bearerToken == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "twitter bearer token not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+s.bearerToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrFeedUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.Wrapf(errors.ErrFeedRateLimited, "twitter API (%d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(errors.ErrProfileNotFound, "twitter API (%d)", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "twitter API (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
