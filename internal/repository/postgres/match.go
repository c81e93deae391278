package postgres

import (
	"context"
	"database/sql"

	"matchpulse/internal/domain/match"
	"matchpulse/pkg/errors"
)

// Ensure MatchRepository implements match.Repository
var _ match.Repository = (*MatchRepository)(nil)

// MatchRepository stores match fixtures
type MatchRepository struct {
	db DBTX
}

func NewMatchRepository(db DBTX) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*match.Match, error) {
	query := `
		SELECT id, home_team, away_team, kickoff_iso,
		       COALESCE(final_whistle_iso, '') AS final_whistle_iso,
		       live_duration_min, created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	m := &match.Match{}
	err := r.db.GetContext(ctx, m, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get match by id")
	}
	return m, nil
}

// ListActive returns fixtures still inside their stream window: the post
// window after a scheduled live phase has not elapsed yet. The bound is
// generous by design; the window clock makes the precise phase call.
func (r *MatchRepository) ListActive(ctx context.Context) ([]match.Match, error) {
	query := `
		SELECT id, home_team, away_team, kickoff_iso,
		       COALESCE(final_whistle_iso, '') AS final_whistle_iso,
		       live_duration_min, created_at, updated_at
		FROM matches
		WHERE kickoff_iso::timestamptz > NOW() - INTERVAL '6 hours'
		  AND kickoff_iso::timestamptz < NOW() + INTERVAL '3 hours'
		ORDER BY kickoff_iso
	`

	var matches []match.Match
	if err := r.db.SelectContext(ctx, &matches, query); err != nil {
		return nil, errors.Wrap(err, "list active matches")
	}
	return matches, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, m *match.Match) error {
	query := `
		INSERT INTO matches (id, home_team, away_team, kickoff_iso, final_whistle_iso, live_duration_min)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (id) DO UPDATE SET
			home_team         = EXCLUDED.home_team,
			away_team         = EXCLUDED.away_team,
			kickoff_iso       = EXCLUDED.kickoff_iso,
			final_whistle_iso = EXCLUDED.final_whistle_iso,
			live_duration_min = EXCLUDED.live_duration_min,
			updated_at        = NOW()
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.HomeTeam, m.AwayTeam, m.KickoffISO, m.FinalWhistleISO, m.LiveDurationMin,
	).Scan(&m.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "upsert match")
	}
	return nil
}
