package stream

import (
	"context"
	"time"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/match"
	"matchpulse/internal/domain/post"
	"matchpulse/internal/metrics"
	svcanalytics "matchpulse/internal/services/analytics"
	"matchpulse/internal/services/window"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

// broadenedLookback is the minimum retry window when a tick fetch comes
// back empty despite having accounts
const broadenedLookback = 60 * time.Minute

// AccountSelector is the selection capability the generator depends on
// (one per platform, injected)
type AccountSelector interface {
	Select(ctx context.Context, matchID *string) ([]account.SelectedAccount, error)
}

// TickSink receives emitted tick summaries for fan-out (Kafka, audit
// snapshots). Failures are logged, never surfaced to the stream.
type TickSink interface {
	PublishTick(ctx context.Context, summary *analytics.TickSummary) error
}

// Request describes one streaming connection
type Request struct {
	MatchID         string
	Platform        account.Platform
	KickoffISO      string
	FinalWhistleISO string
	LiveDurationMin int

	// PhaseOverride pins the phase instead of deriving it from the clock
	PhaseOverride match.Phase

	// LastEventID resumes tick numbering at LastEventID+1
	LastEventID int64
}

// Options bound the generator's timers
type Options struct {
	TickInterval      time.Duration
	HeartbeatInterval time.Duration
	MaxDuration       time.Duration
}

// Generator orchestrates selection, fetching and analytics into a
// cancellable, resumable frame sequence. One Run per connection;
// concurrent connections are independent instances of the loop.
type Generator struct {
	selector AccountSelector
	feed     post.FeedSource
	clock    window.Clock
	engine   *svcanalytics.Engine
	sinks    []TickSink
	opts     Options
	log      *logger.Logger
}

// NewGenerator creates a tick generator for one platform
func NewGenerator(
	selector AccountSelector,
	feed post.FeedSource,
	clock window.Clock,
	engine *svcanalytics.Engine,
	opts Options,
	sinks ...TickSink,
) *Generator {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 20 * time.Second
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 15 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 15 * time.Minute
	}
	return &Generator{
		selector: selector,
		feed:     feed,
		clock:    clock,
		engine:   engine,
		sinks:    sinks,
		opts:     opts,
		log:      logger.Get().With("component", "tick_generator"),
	}
}

// Run starts the frame sequence. The returned channel is closed when the
// stream terminates for any reason: phase ended, wall-clock cap, or
// context cancellation. All timers are released on every exit path.
func (g *Generator) Run(ctx context.Context, req Request) <-chan Frame {
	out := make(chan Frame, 8)

	go g.loop(ctx, req, out)

	return out
}

func (g *Generator) loop(ctx context.Context, req Request, out chan<- Frame) {
	defer close(out)

	log := g.log.With("match_id", req.MatchID, "platform", string(req.Platform))
	startedAt := time.Now()
	seq := req.LastEventID

	tickTicker := time.NewTicker(g.opts.TickInterval)
	defer tickTicker.Stop()
	heartbeat := time.NewTicker(g.opts.HeartbeatInterval)
	defer heartbeat.Stop()
	capTimer := time.NewTimer(g.opts.MaxDuration)
	defer capTimer.Stop()

	emit := func(f Frame) bool {
		select {
		case out <- f:
			metrics.StreamFrames.WithLabelValues(string(f.Type)).Inc()
			return true
		case <-ctx.Done():
			return false
		}
	}

	meta := MetaData{
		MatchID:         req.MatchID,
		Platform:        req.Platform,
		TickIntervalSec: int(g.opts.TickInterval / time.Second),
		HeartbeatSec:    int(g.opts.HeartbeatInterval / time.Second),
		MaxDurationSec:  int(g.opts.MaxDuration / time.Second),
		ResumedFromTick: req.LastEventID,
		StartedAt:       startedAt,
	}
	if !emit(Frame{Type: FrameMeta, Data: meta}) {
		return
	}

	// First tick runs immediately; afterwards the ticker drives the loop.
	if ended := g.runTick(ctx, req, &seq, emit, log); ended {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("Stream cancelled")
			return

		case <-capTimer.C:
			// Deliberate lifecycle boundary, not an error: the consumer
			// reconnects with its last seen tick id.
			log.Info("Stream wall-clock cap reached", "duration", g.opts.MaxDuration)
			return

		case <-heartbeat.C:
			if !emit(Frame{Type: FrameHeartbeat}) {
				return
			}

		case <-tickTicker.C:
			if ended := g.runTick(ctx, req, &seq, emit, log); ended {
				return
			}
		}
	}
}

// runTick performs one fetch-analyze-emit cycle. Returns true when the
// stream must terminate (ended phase emitted or consumer gone).
func (g *Generator) runTick(ctx context.Context, req Request, seq *int64, emit func(Frame) bool, log *logger.Logger) bool {
	now := time.Now()

	phase := req.PhaseOverride
	if phase == "" {
		phase = g.clock.WindowState(req.KickoffISO, req.FinalWhistleISO, req.LiveDurationMin, now)
	}
	if phase.Terminal() {
		emit(Frame{Type: FrameEnded, Data: EndedData{MatchID: req.MatchID, At: now}})
		log.Info("Stream ended with match")
		return true
	}

	summary, err := g.computeTick(ctx, req, phase, now)
	if err != nil {
		// Non-fatal: surface and keep the loop running.
		log.Errorf("Tick computation failed: %v", err)
		metrics.StreamTickErrors.Inc()
		return !emit(Frame{Type: FrameError, Data: ErrorData{Message: err.Error()}})
	}

	*seq++
	summary.Tick = *seq
	if !emit(Frame{Type: FrameTick, ID: *seq, Data: summary}) {
		return true
	}

	for _, sink := range g.sinks {
		if sinkErr := sink.PublishTick(ctx, summary); sinkErr != nil {
			log.Warnf("Tick sink failed: %v", sinkErr)
		}
	}
	return false
}

// computeTick runs selection, fetch (with the broadened-window fallback)
// and analytics for one tick
func (g *Generator) computeTick(ctx context.Context, req Request, phase match.Phase, now time.Time) (*analytics.TickSummary, error) {
	matchID := &req.MatchID

	accounts, err := g.selector.Select(ctx, matchID)
	if err != nil {
		return nil, errors.Wrap(err, "select accounts")
	}

	identifiers := make([]string, 0, len(accounts))
	handles := make([]string, 0, len(accounts))
	for _, a := range accounts {
		identifiers = append(identifiers, a.Profile.Key())
		handles = append(handles, a.Profile.Handle)
	}

	lookback := g.clock.Lookback(req.KickoffISO, req.FinalWhistleISO, req.LiveDurationMin, now)

	var posts []post.Post
	if len(identifiers) > 0 {
		posts, err = g.feed.FetchRecentPosts(ctx, identifiers, lookback)
		if err != nil {
			return nil, errors.Wrap(err, "fetch posts")
		}

		// Quiet window: retry once with a broadened lookback before
		// reporting an empty tick.
		if len(posts) == 0 && lookback < broadenedLookback {
			posts, err = g.feed.FetchRecentPosts(ctx, identifiers, broadenedLookback)
			if err != nil {
				return nil, errors.Wrap(err, "fetch posts (broadened)")
			}
			lookback = broadenedLookback
		}
	}

	sentiment, topics, samples := g.engine.Analyze(posts)

	win := analytics.Window{
		Phase:           phase,
		LookbackMinutes: int(lookback / time.Minute),
	}
	if phase == match.PhaseLive {
		if bin, ok := g.clock.LiveBin(req.KickoffISO, req.LiveDurationMin, now); ok {
			win.Bin = &bin
		}
	}

	return &analytics.TickSummary{
		MatchID:      req.MatchID,
		Platform:     req.Platform,
		Window:       win,
		GeneratedAt:  now,
		Sentiment:    sentiment,
		Volume:       len(posts),
		AccountsUsed: handles,
		Topics:       topics,
		Samples:      samples,
	}, nil
}
