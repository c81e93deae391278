package stream

import (
	"time"

	"matchpulse/internal/domain/account"
)

// FrameType names an emitted frame in the stream grammar
type FrameType string

const (
	// FrameMeta is emitted once with the stream parameters
	FrameMeta FrameType = "meta"

	// FrameTick carries one TickSummary; its ID is the resume cursor
	FrameTick FrameType = "tick"

	// FrameError reports a non-fatal per-tick failure
	FrameError FrameType = "error"

	// FrameEnded is the terminal frame when the match phase ends
	FrameEnded FrameType = "ended"

	// FrameHeartbeat is a periodic keep-alive with no payload
	FrameHeartbeat FrameType = "heartbeat"
)

// Frame is one unit on the stream's FIFO sink. ID is set on tick frames
// only.
type Frame struct {
	Type FrameType   `json:"type"`
	ID   int64       `json:"id,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// MetaData is the payload of the introductory frame
type MetaData struct {
	MatchID         string           `json:"matchId"`
	Platform        account.Platform `json:"platform"`
	TickIntervalSec int              `json:"tickIntervalSec"`
	HeartbeatSec    int              `json:"heartbeatSec"`
	MaxDurationSec  int              `json:"maxDurationSec"`
	ResumedFromTick int64            `json:"resumedFromTick,omitempty"`
	StartedAt       time.Time        `json:"startedAt"`
}

// ErrorData is the payload of a non-fatal error frame
type ErrorData struct {
	Message string `json:"message"`
}

// EndedData is the payload of the terminal frame
type EndedData struct {
	MatchID string    `json:"matchId"`
	At      time.Time `json:"at"`
}
