package workers

import (
	"context"
	"sync"
	"time"

	"matchpulse/internal/metrics"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Scheduler drives registered workers on their own tickers. Each worker
// runs once at startup and then on its interval; a panic or error in one
// iteration never stops the loop.
type Scheduler struct {
	workers []Worker
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	log     *logger.Logger
	started bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{log: logger.Get()}
}

// Register adds a worker; must happen before Start
func (s *Scheduler) Register(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warn("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}
	s.workers = append(s.workers, w)
	s.log.Info("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// Start launches every enabled worker in its own goroutine
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info("Starting worker scheduler", "workers", len(s.workers))

	for _, w := range s.workers {
		if !w.Enabled() {
			s.log.Info("Skipping disabled worker", "worker", w.Name())
			continue
		}
		s.wg.Add(1)
		go s.runWorker(w)
	}
	return nil
}

// Stop cancels all workers and waits for in-flight iterations
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrap(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	s.log.Info("Stopping worker scheduler...")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Info("All workers stopped gracefully")
	case <-time.After(shutdownTimeout):
		s.log.Warn("Worker shutdown timed out", "timeout", shutdownTimeout)
		shutdownErr = errors.Wrap(errors.ErrTimeout, "worker shutdown")
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return shutdownErr
}

func (s *Scheduler) runWorker(w Worker) {
	defer s.wg.Done()

	s.log.Info("Worker started", "worker", w.Name())

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	s.execute(w)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info("Worker stopping", "worker", w.Name())
			return
		case <-ticker.C:
			s.execute(w)
		}
	}
}

func (s *Scheduler) execute(w Worker) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panicked", "worker", w.Name(), "panic", r)
			metrics.WorkerExecutions.WithLabelValues(w.Name(), "panic").Inc()
		}
	}()

	err := w.Run(s.ctx)
	duration := time.Since(start)
	metrics.WorkerDuration.WithLabelValues(w.Name()).Observe(duration.Seconds())

	if recorder, ok := w.(interface{ recordRun(error) }); ok {
		recorder.recordRun(err)
	}

	if err != nil {
		metrics.WorkerExecutions.WithLabelValues(w.Name(), "error").Inc()
		s.log.Error("Worker execution failed", "worker", w.Name(), "error", err, "duration", duration)
		return
	}
	metrics.WorkerExecutions.WithLabelValues(w.Name(), "ok").Inc()
	s.log.Debug("Worker execution completed", "worker", w.Name(), "duration", duration)
}
