package kafka

import (
	"context"

	"matchpulse/internal/domain/analytics"
)

// TickSink publishes emitted ticks to a Kafka topic, keyed by match id
// so consumers see each match's ticks in order
type TickSink struct {
	producer *Producer
	topic    string
}

func NewTickSink(producer *Producer, topic string) *TickSink {
	return &TickSink{producer: producer, topic: topic}
}

func (s *TickSink) PublishTick(ctx context.Context, summary *analytics.TickSummary) error {
	return s.producer.Publish(ctx, s.topic, summary.MatchID, summary)
}
