// Package workers runs the periodic background jobs: analytics
// snapshots and override expiry sweeps.
package workers

import (
	"context"
	"sync"
	"time"

	"matchpulse/pkg/logger"
)

// Worker is one periodic background job. Run completes a single
// iteration; the scheduler drives the cadence via Interval.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
	Interval() time.Duration
	Enabled() bool
}

// Health is a point-in-time view of a worker's execution history
type Health struct {
	LastRun    time.Time
	LastError  error
	RunCount   int64
	ErrorCount int64
	Enabled    bool
}

// BaseWorker carries the bookkeeping every worker shares
type BaseWorker struct {
	name     string
	interval time.Duration
	enabled  bool
	log      *logger.Logger

	mu         sync.RWMutex
	lastRun    time.Time
	lastError  error
	runCount   int64
	errorCount int64
}

func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

func (w *BaseWorker) Name() string            { return w.name }
func (w *BaseWorker) Interval() time.Duration { return w.interval }

func (w *BaseWorker) Enabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

func (w *BaseWorker) Log() *logger.Logger { return w.log }

func (w *BaseWorker) Health() Health {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Health{
		LastRun:    w.lastRun,
		LastError:  w.lastError,
		RunCount:   w.runCount,
		ErrorCount: w.errorCount,
		Enabled:    w.enabled,
	}
}

func (w *BaseWorker) recordRun(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRun = time.Now()
	w.runCount++
	w.lastError = err
	if err != nil {
		w.errorCount++
	}
}
