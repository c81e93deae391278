package bluesky

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRecentPosts_FiltersRepostsAndStalePosts(t *testing.T) {
	fresh := time.Now().UTC().Format(time.RFC3339)
	stale := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
		assert.Equal(t, "posts_no_replies", r.URL.Query().Get("filter"))
		fmt.Fprintf(w, `{"feed":[
			{"post":{"uri":"at://did:plc:a/1","author":{"did":"did:plc:a","handle":"fan.bsky.social"},"record":{"text":"what a goal","createdAt":"%s"}}},
			{"post":{"uri":"at://did:plc:a/2","author":{"did":"did:plc:a","handle":"fan.bsky.social"},"record":{"text":"repost","createdAt":"%s"}},"reason":{"$type":"app.bsky.feed.defs#reasonRepost"}},
			{"post":{"uri":"at://did:plc:a/3","author":{"did":"did:plc:a","handle":"fan.bsky.social"},"record":{"text":"old news","createdAt":"%s"}}}
		]}`, fresh, fresh, stale)
	}))
	defer server.Close()

	source := NewSource(server.URL, 600)
	posts, err := source.FetchRecentPosts(context.Background(), []string{"fan.bsky.social"}, 30*time.Minute)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "what a goal", posts[0].Text)
	assert.Equal(t, "did:plc:a", posts[0].Author.ID)
}

func TestFetchRecentPosts_FailingActorIsSkipped(t *testing.T) {
	fresh := time.Now().UTC().Format(time.RFC3339)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("actor") == "gone.bsky.social" {
			http.Error(w, `{"error":"ActorNotFound"}`, http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"feed":[{"post":{"uri":"at://did:plc:b/1","author":{"did":"did:plc:b","handle":"here.bsky.social"},"record":{"text":"still here","createdAt":"%s"}}}]}`, fresh)
	}))
	defer server.Close()

	source := NewSource(server.URL, 600)
	posts, err := source.FetchRecentPosts(context.Background(), []string{"gone.bsky.social", "here.bsky.social"}, 30*time.Minute)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "still here", posts[0].Text)
}

func TestResolveProfiles_AbsentActorsOmitted(t *testing.T) {
	created := time.Now().Add(-365 * 24 * time.Hour).UTC().Format(time.RFC3339)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xrpc/app.bsky.actor.getProfiles", r.URL.Path)
		fmt.Fprintf(w, `{"profiles":[{"did":"did:plc:a","handle":"fan.bsky.social","displayName":"Fan","followersCount":4200,"postsCount":900,"createdAt":"%s"}]}`, created)
	}))
	defer server.Close()

	source := NewSource(server.URL, 600)
	profiles, err := source.ResolveProfiles(context.Background(), []string{"fan.bsky.social", "missing.bsky.social"})

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "did:plc:a", profiles[0].ID)
	assert.EqualValues(t, 4200, profiles[0].FollowersCount)
	require.NotNil(t, profiles[0].CreatedAt)
}
