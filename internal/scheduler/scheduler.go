// Package scheduler runs a function periodically until it is disabled,
// reconfigured or shut down. The scheduler is a plain value owned by the
// caller; there is no package state.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunFunc is called on every tick. The context is cancelled when the timer
// is torn down. RunFunc must not call back into the Scheduler.
type RunFunc func(ctx context.Context) error

// Scheduler owns at most one running timer.
type Scheduler struct {
	run    RunFunc
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// New returns an idle scheduler.
func New(run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{run: run, logger: logger, state: StateIdle}
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Interval returns the period of the running timer, zero when idle.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Enable starts the timer. It fails when a timer is already running or the
// scheduler was shut down.
func (s *Scheduler) Enable(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Transition(s.state, EventEnable)
	if err != nil {
		return err
	}
	s.arm(interval)
	s.state = next
	s.logger.Info("scheduler enabled", "interval", interval.String())
	return nil
}

// Reconfigure tears down the running timer, if any, and starts a new one
// with interval.
func (s *Scheduler) Reconfigure(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Transition(s.state, EventReconfigure)
	if err != nil {
		return err
	}
	s.teardown()
	s.arm(interval)
	s.state = next
	s.logger.Info("scheduler reconfigured", "interval", interval.String())
	return nil
}

// Disable stops the timer and waits for an in-flight run to observe the
// cancellation. Disabling an idle scheduler is a no-op.
func (s *Scheduler) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Transition(s.state, EventDisable)
	if err != nil {
		return err
	}
	if s.state == StateActive {
		s.logger.Info("scheduler disabled")
	}
	s.teardown()
	s.state = next
	return nil
}

// Shutdown stops the timer for good. Calling it more than once is safe.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTerminated {
		return
	}
	s.teardown()
	s.state, _ = Transition(s.state, EventShutdown)
	s.logger.Info("scheduler shut down")
}

func (s *Scheduler) arm(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.interval = interval
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, interval, done)
}

func (s *Scheduler) teardown() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done

	s.cancel = nil
	s.done = nil
	s.interval = 0
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Ticks arriving during a long run are dropped by the ticker.
			if err := s.run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("scheduled run failed", "error", err)
			}
		}
	}
}
