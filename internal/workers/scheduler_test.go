package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchpulse/pkg/errors"
)

type countingWorker struct {
	*BaseWorker
	runs  int32
	err   error
	panic bool
}

func (w *countingWorker) Run(ctx context.Context) error {
	atomic.AddInt32(&w.runs, 1)
	if w.panic {
		panic("boom")
	}
	return w.err
}

func TestScheduler_RunsWorkerImmediatelyAndOnInterval(t *testing.T) {
	w := &countingWorker{BaseWorker: NewBaseWorker("test", 20*time.Millisecond, true)}
	s := NewScheduler()
	s.Register(w)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(70 * time.Millisecond)
	require.NoError(t, s.Stop())

	runs := atomic.LoadInt32(&w.runs)
	assert.GreaterOrEqual(t, runs, int32(2), "immediate run plus at least one tick")
}

func TestScheduler_DisabledWorkerNeverRuns(t *testing.T) {
	w := &countingWorker{BaseWorker: NewBaseWorker("off", 10*time.Millisecond, false)}
	s := NewScheduler()
	s.Register(w)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(40 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Zero(t, atomic.LoadInt32(&w.runs))
}

func TestScheduler_ErrorsAndPanicsDoNotStopTheLoop(t *testing.T) {
	failing := &countingWorker{
		BaseWorker: NewBaseWorker("failing", 15*time.Millisecond, true),
		err:        errors.ErrInternal,
	}
	panicking := &countingWorker{
		BaseWorker: NewBaseWorker("panicking", 15*time.Millisecond, true),
		panic:      true,
	}
	s := NewScheduler()
	s.Register(failing)
	s.Register(panicking)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.GreaterOrEqual(t, atomic.LoadInt32(&failing.runs), int32(2))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&panicking.runs), int32(2))

	health := failing.Health()
	assert.Equal(t, health.RunCount, health.ErrorCount)
	assert.ErrorIs(t, health.LastError, errors.ErrInternal)
}

func TestScheduler_DoubleStartRejected(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}
