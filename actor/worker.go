package actor

import (
	"math/rand/v2"
	"sync/atomic"
)

// workerStats are the per-worker counters SPEC_FULL.md §3 names.
type workerStats struct {
	tasksProcessed  atomic.Uint64
	tasksStolen     atomic.Uint64
	stealsAttempted atomic.Uint64
}

// WorkerStats is a point-in-time snapshot of one worker's counters.
type WorkerStats struct {
	TasksProcessed  uint64
	TasksStolen     uint64
	StealsAttempted uint64
}

// worker owns one local run-queue and the OS thread (goroutine, in this
// runtime) that drains it. It is both the sole producer of its local
// queue (pushing self-submitted tasks) and one of the queue's safe
// concurrent consumers — the other being any worker stealing from it
// (spec.md §4.5).
type worker struct {
	idx   int
	local *runQueue
	sched *Scheduler
	rng   *rand.Rand
	stats workerStats
}

func newWorker(idx int, capacity int, sched *Scheduler) *worker {
	return &worker{
		idx:   idx,
		local: newRunQueue(capacity),
		sched: sched,
		rng:   rand.New(rand.NewPCG(uint64(idx)+1, 0xC0FFEE)),
	}
}

// Stats returns a snapshot of this worker's counters.
func (w *worker) Stats() WorkerStats {
	return WorkerStats{
		TasksProcessed:  w.stats.tasksProcessed.Load(),
		TasksStolen:     w.stats.tasksStolen.Load(),
		StealsAttempted: w.stats.stealsAttempted.Load(),
	}
}

// submitLocal is the "caller is worker w" fast path from spec.md §4.5's
// submit algorithm: push onto this worker's own local queue, falling back
// to the global queue if local is full.
func (w *worker) submitLocal(t DrainTask) error {
	if w.local.push(t) {
		w.sched.wake()
		return nil
	}
	if w.sched.global.push(t) {
		w.sched.overflowCount.Add(1)
		w.sched.wake()
		return nil
	}
	return ErrSchedulerOverflow
}

// run is the worker loop (spec.md §4.5): local queue, then global queue,
// then work-stealing, then idle/park.
func (w *worker) run() {
	defer w.sched.wg.Done()

	spinCycles := w.sched.config.SpinCycles
	if spinCycles <= 0 {
		spinCycles = 1000
	}

	idle := 0
	for {
		if w.sched.state.load() == Stopped {
			return
		}

		task, ok := w.local.pop()
		if !ok {
			task, ok = w.sched.global.pop()
		}
		if !ok && w.sched.config.EnableWorkStealing {
			task, ok = w.steal()
		}

		if ok {
			idle = 0
			w.execute(task)
			continue
		}

		if w.sched.state.load() == Stopping && w.sched.drained() {
			return
		}

		idle++
		if idle < spinCycles {
			continue
		}
		w.sched.parkUntilWork(w.sched.state.load() != Running)
		idle = 0
	}
}

// steal starts at a random worker and tries one pop from each other
// worker's local run-queue in turn, returning the first task found. Safe
// because the run-queue is SPMC: the owner and any number
// of thieves may call pop concurrently (spec.md §4.5 step 3, resolved via
// SPEC_FULL.md §4.5's SPMC choice rather than an SPSC-plus-steal-lock).
func (w *worker) steal() (DrainTask, bool) {
	n := len(w.sched.workers)
	if n <= 1 {
		return DrainTask{}, false
	}
	w.stats.stealsAttempted.Add(1)
	start := w.rng.IntN(n)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if idx == w.idx {
			continue
		}
		victim := w.sched.workers[idx]
		if task, ok := victim.local.pop(); ok {
			w.stats.tasksStolen.Add(1)
			return task, true
		}
	}
	return DrainTask{}, false
}

// execute runs one drain task: if the target actor is Running (or, during
// scheduler Stopping, Running or Stopping), invoke its drain procedure,
// which processes messages only while the actor is Running; otherwise the task is stale or the
// actor is no longer eligible, and it is dropped (spec.md §4.5 "Executing
// a drain task").
func (w *worker) execute(t DrainTask) {
	defer w.stats.tasksProcessed.Add(1)

	if t.actorRef == nil {
		return
	}
	st := t.actorRef.State()

	schedStopping := w.sched.state.load() == Stopping
	eligible := st == Running || (schedStopping && st == Stopping)
	if !eligible {
		return
	}
	if t.stale() && st == Running {
		// pending was cleared and never re-armed with this token: a
		// racing markIdle/rearm sequence already superseded this task.
		return
	}
	t.actorRef.drainWithWorker(w)
}
