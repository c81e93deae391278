// Package snapshot periodically materializes tick analytics for every
// active match so dashboards have data even with no stream attached.
package snapshot

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"matchpulse/internal/domain/account"
	"matchpulse/internal/domain/analytics"
	"matchpulse/internal/domain/match"
	"matchpulse/internal/domain/post"
	svcanalytics "matchpulse/internal/services/analytics"
	"matchpulse/internal/services/stream"
	"matchpulse/internal/services/window"
	"matchpulse/internal/workers"
	"matchpulse/pkg/errors"
)

// PlatformPipeline bundles the per-platform collaborators the collector
// iterates over
type PlatformPipeline struct {
	Platform account.Platform
	Selector stream.AccountSelector
	Feed     post.FeedSource
}

// Worker walks active matches across both platforms and records one
// snapshot per pair. Failures on one pair do not stop the sweep.
type Worker struct {
	*workers.BaseWorker

	matches   match.Repository
	pipelines []PlatformPipeline
	clock     window.Clock
	engine    *svcanalytics.Engine
	recorder  analytics.Recorder
	sinks     []stream.TickSink
}

func NewWorker(
	interval time.Duration,
	matches match.Repository,
	pipelines []PlatformPipeline,
	clock window.Clock,
	engine *svcanalytics.Engine,
	recorder analytics.Recorder,
	sinks ...stream.TickSink,
) *Worker {
	return &Worker{
		BaseWorker: workers.NewBaseWorker("analytics_snapshot", interval, true),
		matches:    matches,
		pipelines:  pipelines,
		clock:      clock,
		engine:     engine,
		recorder:   recorder,
		sinks:      sinks,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	active, err := w.matches.ListActive(ctx)
	if err != nil {
		return errors.Wrap(err, "list active matches")
	}
	if len(active) == 0 {
		return nil
	}

	log := w.Log()
	snapshots := 0
	totalPosts := 0
	for _, m := range active {
		for _, pipeline := range w.pipelines {
			summary, err := w.collect(ctx, m, pipeline)
			if err != nil {
				log.Warnf("Snapshot failed for %s/%s: %v", m.ID, pipeline.Platform, err)
				continue
			}
			if summary == nil {
				continue
			}

			if err := w.recorder.InsertTickSnapshot(ctx, summary); err != nil {
				log.Warnf("Snapshot write failed for %s/%s: %v", m.ID, pipeline.Platform, err)
				continue
			}
			for _, sink := range w.sinks {
				if err := sink.PublishTick(ctx, summary); err != nil {
					log.Warnf("Snapshot fan-out failed for %s/%s: %v", m.ID, pipeline.Platform, err)
				}
			}
			snapshots++
			totalPosts += summary.Volume
		}
	}

	log.Info("Snapshot sweep done",
		"matches", len(active),
		"snapshots", snapshots,
		"posts", humanize.Comma(int64(totalPosts)),
	)
	return nil
}

// collect builds one tick summary outside any stream. Ended matches
// yield nil, there is nothing left to observe.
func (w *Worker) collect(ctx context.Context, m match.Match, pipeline PlatformPipeline) (*analytics.TickSummary, error) {
	now := time.Now()

	phase := w.clock.WindowState(m.KickoffISO, m.FinalWhistleISO, m.LiveDurationMin, now)
	if phase.Terminal() {
		return nil, nil
	}

	accounts, err := pipeline.Selector.Select(ctx, &m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "select accounts")
	}

	identifiers := make([]string, 0, len(accounts))
	handles := make([]string, 0, len(accounts))
	for _, a := range accounts {
		identifiers = append(identifiers, a.Profile.Key())
		handles = append(handles, a.Profile.Handle)
	}

	var posts []post.Post
	lookback := w.clock.Lookback(m.KickoffISO, m.FinalWhistleISO, m.LiveDurationMin, now)
	if len(identifiers) > 0 {
		posts, err = pipeline.Feed.FetchRecentPosts(ctx, identifiers, lookback)
		if err != nil {
			return nil, errors.Wrap(err, "fetch posts")
		}
	}

	sentiment, topics, samples := w.engine.Analyze(posts)

	win := analytics.Window{
		Phase:           phase,
		LookbackMinutes: int(lookback / time.Minute),
	}
	if phase == match.PhaseLive {
		if bin, ok := w.clock.LiveBin(m.KickoffISO, m.LiveDurationMin, now); ok {
			win.Bin = &bin
		}
	}

	return &analytics.TickSummary{
		MatchID:      m.ID,
		Platform:     pipeline.Platform,
		Window:       win,
		GeneratedAt:  now,
		Sentiment:    sentiment,
		Volume:       len(posts),
		AccountsUsed: handles,
		Topics:       topics,
		Samples:      samples,
	}, nil
}
