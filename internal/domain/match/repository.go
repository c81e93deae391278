package match

import "context"

// Repository is the match fixture store
type Repository interface {
	GetByID(ctx context.Context, id string) (*Match, error)

	// ListActive returns matches whose stream window has not ended yet,
	// the set the snapshot worker iterates
	ListActive(ctx context.Context) ([]Match, error)

	Upsert(ctx context.Context, m *Match) error
}
