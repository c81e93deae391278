package analytics

import (
	"context"
	"time"
)

// SummaryAudit records one summarize-path request outcome
type SummaryAudit struct {
	ID          string    `ch:"id"`
	MatchID     string    `ch:"match_id"`
	Platform    string    `ch:"platform"`
	Status      string    `ch:"status"` // ok | rate_limited | upstream_error
	PostsKept   int       `ch:"posts_kept"`
	CharsKept   int       `ch:"chars_kept"`
	DurationMs  int64     `ch:"duration_ms"`
	ErrorDetail string    `ch:"error_detail"`
	RequestedAt time.Time `ch:"requested_at"`
}

// Recorder is the audit/alerting sink collaborator (ClickHouse). Writes
// are best-effort from the caller's perspective.
type Recorder interface {
	// InsertTickSnapshot stores an emitted tick summary for offline review
	InsertTickSnapshot(ctx context.Context, summary *TickSummary) error

	// InsertSummaryAudit stores the outcome of one summarization request
	InsertSummaryAudit(ctx context.Context, audit *SummaryAudit) error
}

// Alerter notifies operators about summarize-path upstream failures
type Alerter interface {
	Alert(ctx context.Context, message string) error
}
