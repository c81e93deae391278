// Package sweeper removes expired override rules from storage.
package sweeper

import (
	"context"
	"time"

	"matchpulse/internal/workers"
)

// OverrideSweeper is the storage capability the sweeper needs
type OverrideSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Worker hard-deletes expired override rules. Selection already filters
// expiry at read time; the sweep only keeps the table from growing.
type Worker struct {
	*workers.BaseWorker
	store OverrideSweeper
}

func NewWorker(interval time.Duration, store OverrideSweeper) *Worker {
	return &Worker{
		BaseWorker: workers.NewBaseWorker("override_sweeper", interval, true),
		store:      store,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	removed, err := w.store.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		w.Log().Info("Expired overrides removed", "count", removed)
	}
	return nil
}
