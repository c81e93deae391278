package stream

import (
	"context"

	"matchpulse/internal/domain/analytics"
)

// RecorderSink routes emitted ticks into the analytics recorder so live
// streams leave an offline trail alongside the snapshot worker's
type RecorderSink struct {
	recorder analytics.Recorder
}

func NewRecorderSink(recorder analytics.Recorder) *RecorderSink {
	return &RecorderSink{recorder: recorder}
}

func (s *RecorderSink) PublishTick(ctx context.Context, summary *analytics.TickSummary) error {
	return s.recorder.InsertTickSnapshot(ctx, summary)
}
