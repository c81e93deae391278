package post

import "time"

// Author is the posting account as seen on the wire
type Author struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

// Post is a normalized text-only social post. Ephemeral: produced fresh
// per fetch, never persisted by the core.
type Post struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
