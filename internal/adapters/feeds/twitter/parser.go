package twitter

import (
	"encoding/json"
	"time"

	"matchpulse/internal/domain/post"
)

// feedItem is the union of tweet shapes the API is known to return.
// Recent endpoints use text/created_at/author_id, older payloads carry
// full_text and a nested user object. Unknown fields are ignored and an
// item that matches neither shape is skipped.
type feedItem struct {
	ID        string `json:"id"`
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
	AuthorID  string `json:"author_id"`
	User      *struct {
		ID         string `json:"id_str"`
		ScreenName string `json:"screen_name"`
		Name       string `json:"name"`
	} `json:"user"`
}

type userObject struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Name          string `json:"name"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		FollowersCount int64 `json:"followers_count"`
		TweetCount     int64 `json:"tweet_count"`
	} `json:"public_metrics"`
}

// timestamps arrive either as RFC3339 (v2) or as Twitter's legacy ruby
// format
var createdAtLayouts = []string{
	time.RFC3339,
	"Mon Jan 02 15:04:05 -0700 2006",
}

func parseCreatedAt(raw string) (time.Time, bool) {
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseFeedItems normalizes a raw timeline payload to canonical posts.
// Items missing an id, text or a parseable timestamp are dropped rather
// than failing the batch.
func parseFeedItems(raw []json.RawMessage, fallbackAuthor post.Author) []post.Post {
	posts := make([]post.Post, 0, len(raw))
	for _, item := range raw {
		var parsed feedItem
		if err := json.Unmarshal(item, &parsed); err != nil {
			continue
		}

		id := parsed.ID
		if id == "" {
			id = parsed.IDStr
		}
		text := parsed.Text
		if text == "" {
			text = parsed.FullText
		}
		if id == "" || text == "" {
			continue
		}

		createdAt, ok := parseCreatedAt(parsed.CreatedAt)
		if !ok {
			continue
		}

		author := fallbackAuthor
		if parsed.User != nil {
			author = post.Author{
				ID:          parsed.User.ID,
				Handle:      parsed.User.ScreenName,
				DisplayName: parsed.User.Name,
			}
		} else if parsed.AuthorID != "" && author.ID == "" {
			author.ID = parsed.AuthorID
		}

		posts = append(posts, post.Post{
			ID:        id,
			Author:    author,
			Text:      text,
			CreatedAt: createdAt,
		})
	}
	return posts
}
