package twitter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/internal/domain/post"
)

func rawItems(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestParseFeedItems_V2Shape(t *testing.T) {
	raw := rawItems(t,
		`{"id":"100","text":"what a goal","created_at":"2026-03-01T15:04:05Z","author_id":"42"}`,
	)

	posts := parseFeedItems(raw, post.Author{})

	require.Len(t, posts, 1)
	assert.Equal(t, "100", posts[0].ID)
	assert.Equal(t, "what a goal", posts[0].Text)
	assert.Equal(t, "42", posts[0].Author.ID)
	assert.Equal(t, 2026, posts[0].CreatedAt.Year())
}

func TestParseFeedItems_LegacyShape(t *testing.T) {
	raw := rawItems(t,
		`{"id_str":"200","full_text":"robbed by var","created_at":"Sun Mar 01 15:04:05 +0000 2026","user":{"id_str":"7","screen_name":"fan","name":"Fan Account"}}`,
	)

	posts := parseFeedItems(raw, post.Author{})

	require.Len(t, posts, 1)
	assert.Equal(t, "200", posts[0].ID)
	assert.Equal(t, "robbed by var", posts[0].Text)
	assert.Equal(t, "fan", posts[0].Author.Handle)
}

func TestParseFeedItems_SkipsUnrecognizedShapes(t *testing.T) {
	raw := rawItems(t,
		`{"id":"1","text":"kept","created_at":"2026-03-01T15:00:00Z"}`,
		`{"something":"else"}`,
		`{"id":"2","text":"no timestamp"}`,
		`{"id":"3","created_at":"2026-03-01T15:00:00Z"}`,
		`"not an object"`,
	)

	posts := parseFeedItems(raw, post.Author{ID: "9"})

	require.Len(t, posts, 1)
	assert.Equal(t, "kept", posts[0].Text)
	assert.Equal(t, "9", posts[0].Author.ID, "fallback author applied")
}

func TestParseFeedItems_FallbackAuthorNotOverwrittenByAuthorID(t *testing.T) {
	raw := rawItems(t,
		`{"id":"1","text":"x","created_at":"2026-03-01T15:00:00Z","author_id":"other"}`,
	)

	posts := parseFeedItems(raw, post.Author{ID: "known", Handle: "known_fan"})

	require.Len(t, posts, 1)
	assert.Equal(t, "known", posts[0].Author.ID)
}
