package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Status represents the scheduler's lifecycle state. Halted is terminal: a
// cycle failed in a way that could leave partial state behind and the timer
// was deliberately not re-armed. Operator intervention is required.
type Status string

// Set of possible scheduler states.
const (
	StatusIdle    Status = "Idle"
	StatusRunning Status = "Running"
	StatusHalted  Status = "Halted"
)

// Set of scheduler errors returned from Trigger.
var (
	ErrCycleRunning = errors.New("a cycle is already running")
	ErrShutdown     = errors.New("scheduler is shut down")
)

// =============================================================================

// Scheduler runs settlement cycles on the block interval. Each completed
// cycle arms the next one-shot timer from within the just-finished run, so a
// slow cycle delays the next one instead of overlapping it. A failed or
// panicking cycle halts the scheduler instead of silently retrying: a
// corrupted cursor or half-written chain state is worse than a stalled
// chain.
type Scheduler struct {
	svc      *Service
	clock    clockwork.Clock
	interval time.Duration
	ev       EventHandler

	mu     sync.Mutex
	status Status
	timer  clockwork.Timer
	shut   bool
}

// NewScheduler constructs a scheduler for the specified service. The clock
// is the service's clock so tests can drive both together.
func NewScheduler(svc *Service, interval time.Duration, ev EventHandler) *Scheduler {
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	return &Scheduler{
		svc:      svc,
		clock:    svc.clock,
		interval: interval,
		ev:       ev,
		status:   StatusIdle,
	}
}

// Start arms the first cycle timer.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shut || s.status == StatusHalted {
		return
	}

	s.ev("chain: scheduler: started: interval[%v]", s.interval)
	s.timer = s.clock.AfterFunc(s.interval, s.run)
}

// Shutdown stops the pending timer. A cycle already running completes; it
// finds shut set when it tries to re-arm.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ev("chain: scheduler: shutdown")

	s.shut = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Status returns the scheduler's current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Trigger runs one cycle immediately under the same non-reentrancy rules as
// the timer path. It is the operator's way to force a cycle, including after
// a halt once the underlying fault is fixed.
func (s *Scheduler) Trigger(ctx context.Context) error {
	return s.execute(ctx)
}

// =============================================================================

// run is the timer callback.
func (s *Scheduler) run() {
	s.execute(context.Background())
}

// execute performs one guarded cycle and re-arms the timer on success.
func (s *Scheduler) execute(ctx context.Context) (err error) {
	s.mu.Lock()
	if s.shut {
		s.mu.Unlock()
		return ErrShutdown
	}
	if s.status == StatusRunning {
		s.mu.Unlock()
		return ErrCycleRunning
	}

	// A triggered cycle replaces the pending timer; the next one is armed
	// fresh when this cycle completes.
	if s.timer != nil {
		s.timer.Stop()
	}
	s.status = StatusRunning
	s.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			s.halt(fmt.Errorf("panic: %v", rec))
			err = fmt.Errorf("cycle panic: %v", rec)
		}
	}()

	if perr := s.svc.Process(ctx); perr != nil {
		s.halt(perr)
		return perr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusIdle
	if !s.shut {
		s.timer = s.clock.AfterFunc(s.interval, s.run)
	}

	return nil
}

// halt records the terminal state. The timer is not re-armed.
func (s *Scheduler) halt(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = StatusHalted
	s.ev("chain: scheduler: HALTED: %s", err)
}
