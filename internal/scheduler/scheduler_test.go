package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func counter() (*atomic.Int32, RunFunc) {
	var n atomic.Int32
	return &n, func(ctx context.Context) error {
		n.Add(1)
		return nil
	}
}

func TestEnableRunsPeriodically(t *testing.T) {
	runs, run := counter()
	s := New(run, nil)
	defer s.Shutdown()

	require.NoError(t, s.Enable(5*time.Millisecond))
	require.Equal(t, StateActive, s.State())
	require.Equal(t, 5*time.Millisecond, s.Interval())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestEnableTwiceFails(t *testing.T) {
	_, run := counter()
	s := New(run, nil)
	defer s.Shutdown()

	require.NoError(t, s.Enable(time.Hour))
	require.Error(t, s.Enable(time.Hour))
	require.Error(t, s.Enable(0))
}

func TestDisableStopsTimer(t *testing.T) {
	runs, run := counter()
	s := New(run, nil)

	require.NoError(t, s.Enable(5*time.Millisecond))
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Disable())
	require.Equal(t, StateIdle, s.State())
	require.Zero(t, s.Interval())

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, runs.Load())

	// Disabling again is harmless.
	require.NoError(t, s.Disable())
}

func TestDisableCancelsInFlightRun(t *testing.T) {
	started := make(chan struct{}, 1)
	var cancelled atomic.Bool
	s := New(func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, nil)

	require.NoError(t, s.Enable(time.Millisecond))
	<-started

	require.NoError(t, s.Disable())
	require.True(t, cancelled.Load())
}

func TestReconfigureReplacesTimer(t *testing.T) {
	runs, run := counter()
	s := New(run, nil)
	defer s.Shutdown()

	require.NoError(t, s.Enable(time.Hour))
	require.NoError(t, s.Reconfigure(5*time.Millisecond))
	require.Equal(t, StateActive, s.State())
	require.Equal(t, 5*time.Millisecond, s.Interval())

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestReconfigureArmsIdleScheduler(t *testing.T) {
	_, run := counter()
	s := New(run, nil)
	defer s.Shutdown()

	require.NoError(t, s.Reconfigure(time.Hour))
	require.Equal(t, StateActive, s.State())
}

func TestShutdownIsTerminalAndIdempotent(t *testing.T) {
	runs, run := counter()
	s := New(run, nil)

	require.NoError(t, s.Enable(5*time.Millisecond))
	s.Shutdown()
	s.Shutdown()
	require.Equal(t, StateTerminated, s.State())

	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, stopped, runs.Load())

	require.Error(t, s.Enable(time.Millisecond))
	require.Error(t, s.Reconfigure(time.Millisecond))
	require.Error(t, s.Disable())
}

func TestRunErrorsDoNotStopTimer(t *testing.T) {
	var n atomic.Int32
	s := New(func(ctx context.Context) error {
		n.Add(1)
		return errors.New("boom")
	}, nil)
	defer s.Shutdown()

	require.NoError(t, s.Enable(5*time.Millisecond))
	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, time.Millisecond)
}
