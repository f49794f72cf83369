package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// SchedulerConfig configures the scheduler (spec.md §6's recognized
// configuration options, the scheduler-relevant subset).
type SchedulerConfig struct {
	WorkerThreads        int
	WorkerQueueCapacity  int
	GlobalQueueCapacity  int
	SpinCycles           int
	EnableWorkStealing   bool
}

// DefaultSchedulerConfig matches spec.md §6's defaults, with
// WorkerThreads resolved by the caller (System uses runtime.NumCPU()).
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		WorkerThreads:       0, // resolved by caller
		WorkerQueueCapacity: 4096,
		GlobalQueueCapacity: 32768,
		SpinCycles:          1000,
		EnableWorkStealing:  true,
	}
}

// SchedulerStats is a point-in-time snapshot of scheduler-wide counters.
type SchedulerStats struct {
	OverflowCount uint64
	ParkCount     uint64
	Workers       []WorkerStats
}

// Scheduler owns the fixed worker pool, their local run-queues, and the
// global overflow queue (spec.md §4.5). Its own lifecycle is a state
// machine: Stopped -> Starting -> Running -> Stopping -> Stopped.
// Grounded on bollywood/engine.go's Engine for the shutdown shape (an
// atomic stopping flag plus a wait for every tracked unit to finish) but
// generalized from "goroutine per actor" to "fixed worker pool pulling
// from run-queues."
type Scheduler struct {
	config  SchedulerConfig
	state   *stateBox
	workers []*worker
	global  *globalQueue
	wg      sync.WaitGroup

	parkMu        sync.Mutex
	parkCond      *sync.Cond
	parkedCount   atomic.Int32
	overflowCount atomic.Uint64
	parkCount     atomic.Uint64
}

// NewScheduler constructs a Scheduler in the Stopped state. Call Start to
// spawn workers.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		config: cfg,
		state:  newStateBox(Stopped),
		global: newGlobalQueue(cfg.GlobalQueueCapacity),
	}
	s.parkCond = sync.NewCond(&s.parkMu)

	n := cfg.WorkerThreads
	if n < 1 {
		n = 1
	}
	s.workers = make([]*worker, n)
	for i := range s.workers {
		s.workers[i] = newWorker(i, cfg.WorkerQueueCapacity, s)
	}
	return s
}

// Start transitions Stopped -> Starting -> Running and spawns one
// goroutine per worker.
func (s *Scheduler) Start() error {
	if err := s.state.transition(Starting, Stopped); err != nil {
		return err
	}
	s.wg.Add(len(s.workers))
	for _, w := range s.workers {
		go w.run()
	}
	return s.state.transition(Running, Starting)
}

// Stop transitions Running -> Stopping, wakes every parked worker, waits
// for the run-queues to drain on a best-effort basis (spec.md §4.5's
// scheduler state machine), joins all worker goroutines, then transitions
// to Stopped.
func (s *Scheduler) Stop() error {
	if err := s.state.transition(Stopping, Running); err != nil {
		return err
	}
	s.wakeAll()
	s.wg.Wait()
	return s.state.transition(Stopped, Stopping)
}

// drained reports whether every run-queue (local and global) is
// currently empty, used by the worker loop to decide it's safe to exit
// during Stopping.
func (s *Scheduler) drained() bool {
	if s.global.size() > 0 {
		return false
	}
	for _, w := range s.workers {
		if w.local.head.Load() != w.local.tail.Load() {
			return false
		}
	}
	return true
}

// Submit publishes a task from an arbitrary non-worker thread directly to
// the global queue (spec.md §4.5's submit algorithm, "if the caller is
// not a worker"). Workers publish via worker.submitLocal instead.
func (s *Scheduler) Submit(t DrainTask) error {
	if s.global.push(t) {
		s.overflowCount.Add(1)
		s.wake()
		return nil
	}
	return ErrSchedulerOverflow
}

// submitWithRetry is the mandated policy for the actor re-arm path
// (spec.md §7, ErrSchedulerOverflow): spin-sleep briefly and retry rather
// than lose a drain task and violate I-PENDING, since the alternative —
// silently dropping the task — would leave pending=true with nothing
// backing it.
func (s *Scheduler) submitWithRetry(t DrainTask) {
	const maxBackoff = 4 * time.Millisecond
	backoff := 50 * time.Microsecond
	for {
		if err := s.Submit(t); err == nil {
			return
		}
		if s.state.load() == Stopped {
			return
		}
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// wake signals at least one parked worker, satisfying spec.md §5's
// liveness requirement that a successful submit eventually wakes a
// worker capable of observing the new task.
func (s *Scheduler) wake() {
	if s.parkedCount.Load() > 0 {
		s.parkCond.Signal()
	}
}

func (s *Scheduler) wakeAll() {
	s.parkCond.Broadcast()
}

// parkUntilWork blocks the calling worker on the scheduler-wide condition
// variable until woken by wake/wakeAll, or returns immediately if
// stopping is true (Stop already requested, no need to actually sleep).
func (s *Scheduler) parkUntilWork(stopping bool) {
	if stopping {
		return
	}
	s.parkCount.Add(1)
	s.parkMu.Lock()
	s.parkedCount.Add(1)
	s.parkCond.Wait()
	s.parkedCount.Add(-1)
	s.parkMu.Unlock()
}

// Stats returns a snapshot of scheduler-wide and per-worker counters.
func (s *Scheduler) Stats() SchedulerStats {
	ws := make([]WorkerStats, len(s.workers))
	for i, w := range s.workers {
		ws[i] = w.Stats()
	}
	return SchedulerStats{
		OverflowCount: s.overflowCount.Load(),
		ParkCount:     s.parkCount.Load(),
		Workers:       ws,
	}
}

// NumWorkers returns the configured worker count.
func (s *Scheduler) NumWorkers() int { return len(s.workers) }
