// Package bluesky implements the Bluesky feed source over the public
// XRPC endpoints.
package bluesky

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"matchpulse/internal/adapters/feeds/ratelimit"
	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/post"
	"matchpulse/internal/metrics"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

const (
	defaultHost   = "https://public.api.bsky.app"
	platformLabel = "bluesky"

	// getProfiles accepts at most 25 actors per call
	maxActorsPerLookup = 25
)

var _ post.FeedSource = (*Source)(nil)

// Source reads public Bluesky data, no auth required. Actor identifiers
// are DIDs or handles; both work verbatim against the XRPC endpoints.
type Source struct {
	host    string
	client  *http.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewSource(host string, requestsPerMinute int) *Source {
	if host == "" {
		host = defaultHost
	}
	return &Source{
		host:    host,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: ratelimit.NewLimiter(platformLabel, requestsPerMinute),
		log:     logger.Get().With("component", "bluesky_source"),
	}
}

type profileView struct {
	DID            string `json:"did"`
	Handle         string `json:"handle"`
	DisplayName    string `json:"displayName"`
	FollowersCount int64  `json:"followersCount"`
	PostsCount     int64  `json:"postsCount"`
	CreatedAt      string `json:"createdAt"`
}

func (v profileView) toProfile() account.Profile {
	profile := account.Profile{
		ID:             v.DID,
		Handle:         v.Handle,
		DisplayName:    v.DisplayName,
		FollowersCount: v.FollowersCount,
		PostCount:      v.PostsCount,
	}
	// Older profile records carry no creation timestamp; the eligibility
	// check treats that as age unknown.
	if ts, err := time.Parse(time.RFC3339, v.CreatedAt); err == nil {
		profile.CreatedAt = &ts
	}
	return profile
}

// ResolveProfiles resolves actors in chunks of 25. Actors the API does
// not know are simply absent from the result.
func (s *Source) ResolveProfiles(ctx context.Context, identifiers []string) ([]account.Profile, error) {
	var profiles []account.Profile
	for start := 0; start < len(identifiers); start += maxActorsPerLookup {
		end := start + maxActorsPerLookup
		if end > len(identifiers) {
			end = len(identifiers)
		}

		params := url.Values{}
		for _, actor := range identifiers[start:end] {
			params.Add("actors", actor)
		}

		began := time.Now()
		body, err := s.get(ctx, "/xrpc/app.bsky.actor.getProfiles", params)
		if err != nil {
			metrics.ObserveFeedRequest(platformLabel, "resolve_profiles", "error", began)
			return nil, err
		}
		metrics.ObserveFeedRequest(platformLabel, "resolve_profiles", "ok", began)

		var payload struct {
			Profiles []profileView `json:"profiles"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, errors.Wrap(err, "unmarshal profiles")
		}
		for _, v := range payload.Profiles {
			profiles = append(profiles, v.toProfile())
		}
	}
	return profiles, nil
}

// FetchRecentPosts pulls each actor's feed independently, filtering to
// original posts inside the lookback window. A failing actor is skipped.
func (s *Source) FetchRecentPosts(ctx context.Context, actorIdentifiers []string, lookback time.Duration) ([]post.Post, error) {
	cutoff := time.Now().Add(-lookback)

	var all []post.Post
	for _, actor := range actorIdentifiers {
		posts, err := s.fetchAuthorFeed(ctx, actor, cutoff)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			s.log.Warnf("Author feed fetch failed for %s: %v", actor, err)
			continue
		}
		all = append(all, posts...)
	}
	return all, nil
}

func (s *Source) fetchAuthorFeed(ctx context.Context, actor string, cutoff time.Time) ([]post.Post, error) {
	params := url.Values{
		"actor":  {actor},
		"filter": {"posts_no_replies"},
		"limit":  {strconv.Itoa(post.MaxPostsPerAuthor)},
	}

	began := time.Now()
	body, err := s.get(ctx, "/xrpc/app.bsky.feed.getAuthorFeed", params)
	if err != nil {
		metrics.ObserveFeedRequest(platformLabel, "fetch_posts", "error", began)
		return nil, err
	}
	metrics.ObserveFeedRequest(platformLabel, "fetch_posts", "ok", began)

	var payload struct {
		Feed []struct {
			Post struct {
				URI    string `json:"uri"`
				Author struct {
					DID         string `json:"did"`
					Handle      string `json:"handle"`
					DisplayName string `json:"displayName"`
				} `json:"author"`
				Record struct {
					Text      string `json:"text"`
					CreatedAt string `json:"createdAt"`
				} `json:"record"`
			} `json:"post"`
			Reason *json.RawMessage `json:"reason"`
		} `json:"feed"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal author feed")
	}

	posts := make([]post.Post, 0, len(payload.Feed))
	for _, item := range payload.Feed {
		// A present reason marks a repost; only original posts count.
		if item.Reason != nil {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, item.Post.Record.CreatedAt)
		if err != nil || createdAt.Before(cutoff) {
			continue
		}
		if item.Post.URI == "" || item.Post.Record.Text == "" {
			continue
		}
		posts = append(posts, post.Post{
			ID: item.Post.URI,
			Author: post.Author{
				ID:          item.Post.Author.DID,
				Handle:      item.Post.Author.Handle,
				DisplayName: item.Post.Author.DisplayName,
			},
			Text:      item.Post.Record.Text,
			CreatedAt: createdAt,
		})
	}
	return posts, nil
}

func (s *Source) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.host+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

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
		return nil, errors.Wrapf(errors.ErrFeedRateLimited, "bluesky API (%d)", resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(errors.ErrProfileNotFound, "bluesky API (%d): %s", resp.StatusCode, string(body))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "bluesky API (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
