// Package clickhouse stores analytics audit rows and tick snapshots.
package clickhouse

import (
	"context"
	"encoding/json"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"matchpulse/internal/domain/analytics"
	"matchpulse/pkg/errors"
)

// Ensure AnalyticsRepository implements analytics.Recorder
var _ analytics.Recorder = (*AnalyticsRepository)(nil)

// AnalyticsRepository writes tick snapshots and summarize audits.
// Volumes are low (one snapshot per match per minute, one audit per
// summarize request) so rows go straight in without a batch writer.
type AnalyticsRepository struct {
	conn driver.Conn
}

func NewAnalyticsRepository(conn driver.Conn) *AnalyticsRepository {
	return &AnalyticsRepository{conn: conn}
}

// InsertTickSnapshot flattens one emitted tick into the tick_snapshots
// table. Topics are stored as JSON to keep the schema stable while the
// keyword list changes.
func (r *AnalyticsRepository) InsertTickSnapshot(ctx context.Context, summary *analytics.TickSummary) error {
	topicsJSON, err := json.Marshal(summary.Topics)
	if err != nil {
		return errors.Wrap(err, "marshal topics")
	}

	binIndex := int32(-1)
	if summary.Window.Bin != nil {
		binIndex = int32(summary.Window.Bin.Index)
	}

	query := `
		INSERT INTO tick_snapshots (
			match_id, platform, phase, bin_index, lookback_min,
			generated_at, tick, volume,
			sentiment_positive, sentiment_negative, sentiment_neutral,
			ratio_positive, ratio_negative, ratio_neutral,
			accounts_used, topics
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	err = r.conn.Exec(ctx, query,
		summary.MatchID,
		string(summary.Platform),
		string(summary.Window.Phase),
		binIndex,
		int32(summary.Window.LookbackMinutes),
		summary.GeneratedAt,
		summary.Tick,
		int32(summary.Volume),
		int32(summary.Sentiment.Counts.Pos),
		int32(summary.Sentiment.Counts.Neg),
		int32(summary.Sentiment.Counts.Neu),
		summary.Sentiment.Ratios.Pos,
		summary.Sentiment.Ratios.Neg,
		summary.Sentiment.Ratios.Neu,
		summary.AccountsUsed,
		string(topicsJSON),
	)
	if err != nil {
		return errors.Wrap(err, "insert tick snapshot")
	}
	return nil
}

// InsertSummaryAudit records one summarize-path outcome
func (r *AnalyticsRepository) InsertSummaryAudit(ctx context.Context, audit *analytics.SummaryAudit) error {
	query := `
		INSERT INTO summary_audits (
			id, match_id, platform, status,
			posts_kept, chars_kept, duration_ms, error_detail, requested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	err := r.conn.Exec(ctx, query,
		audit.ID,
		audit.MatchID,
		audit.Platform,
		audit.Status,
		int32(audit.PostsKept),
		int32(audit.CharsKept),
		audit.DurationMs,
		audit.ErrorDetail,
		audit.RequestedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert summary audit")
	}
	return nil
}
