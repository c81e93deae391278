// Package postgres holds the sqlx-backed persistence layer.
package postgres

import (
	"context"

	"matchpulse/internal/domain/account"
	"matchpulse/pkg/errors"
)

// Ensure OverrideRepository implements account.OverrideStore
var _ account.OverrideStore = (*OverrideRepository)(nil)

// OverrideRepository stores admin include/exclude rules
type OverrideRepository struct {
	db DBTX
}

func NewOverrideRepository(db DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// GetOverrides loads the expiry-filtered rule set for one selection call:
// global rules plus match-scoped rules when matchID is given
func (r *OverrideRepository) GetOverrides(ctx context.Context, platform account.Platform, matchID *string) (account.OverrideSet, error) {
	query := `
		SELECT id, platform, kind, identifier, identifier_type,
		       scope, match_id, bypass_eligibility, expires_at, created_at
		FROM account_overrides
		WHERE platform = $1
		  AND (scope = 'global' OR (scope = 'match' AND match_id = $2))
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at
	`

	var rules []account.OverrideRule
	if err := r.db.SelectContext(ctx, &rules, query, platform, matchID); err != nil {
		return account.OverrideSet{}, errors.Wrap(err, "select overrides")
	}

	var set account.OverrideSet
	for _, rule := range rules {
		switch rule.Kind {
		case account.RuleInclude:
			set.Include = append(set.Include, rule)
		case account.RuleExclude:
			set.Exclude = append(set.Exclude, rule)
		}
	}
	return set, nil
}

// Create inserts a new rule and fills its generated fields
func (r *OverrideRepository) Create(ctx context.Context, rule *account.OverrideRule) error {
	query := `
		INSERT INTO account_overrides (
			platform, kind, identifier, identifier_type,
			scope, match_id, bypass_eligibility, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rule.Platform, rule.Kind, rule.Identifier, rule.IdentifierType,
		rule.Scope, rule.MatchID, rule.BypassEligibility, rule.ExpiresAt,
	).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert override")
	}
	return nil
}

// Delete removes a rule by id
func (r *OverrideRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account_overrides WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete override")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete override rows affected")
	}
	if affected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// List returns every rule for a platform, expired included, for admin
// inspection
func (r *OverrideRepository) List(ctx context.Context, platform account.Platform) ([]account.OverrideRule, error) {
	query := `
		SELECT id, platform, kind, identifier, identifier_type,
		       scope, match_id, bypass_eligibility, expires_at, created_at
		FROM account_overrides
		WHERE platform = $1
		ORDER BY created_at DESC
	`

	var rules []account.OverrideRule
	if err := r.db.SelectContext(ctx, &rules, query, platform); err != nil {
		return nil, errors.Wrap(err, "list overrides")
	}
	return rules, nil
}

// SweepExpired hard-deletes rules past their expiry and returns the
// number removed. Run periodically by the override sweeper worker.
func (r *OverrideRepository) SweepExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM account_overrides WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, errors.Wrap(err, "sweep expired overrides")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "sweep rows affected")
	}
	return affected, nil
}
