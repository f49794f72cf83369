package actor

import (
	"runtime"
	"sync/atomic"
)

// runQueueSlot holds one drain task tagged with the production cycle it
// belongs to, the same "cycle" trick hayabusa-cloud-lfq's SPMC/MPMC queues
// use for ABA-safe slot validation without per-pop locking.
type runQueueSlot struct {
	cycle atomic.Uint64
	task  DrainTask
}

// runQueue is a worker's local run-queue of DrainTask: a single-producer
// multi-consumer bounded queue, grounded on hayabusa-cloud-lfq's FAA-based
// SPMC queue (spmc.go). The owning worker is the sole producer (pushing
// newly-submitted or re-armed drain tasks for actors it schedules) and one
// of potentially many consumers (draining its own backlog); every other
// worker is a consumer only, stealing via the same pop. This resolves
// spec.md §9's "open question: steal from SPSC" — stealing needs a queue
// that is safe for concurrent pops from multiple threads, which an SPSC
// ring is not, so the per-worker run-queue is SPMC instead of SPSC.
//
// Physical capacity is 2n slots for a logical capacity of n, matching the
// source algorithm's SCQ-derived layout.
type runQueue struct {
	_         cacheLinePad
	head      atomic.Uint64 // consumer index, advanced by FAA (owner + thieves)
	_         cacheLinePad
	tail      atomic.Uint64 // producer index, owner-only
	_         cacheLinePad
	threshold atomic.Int64 // livelock guard for consumers racing an empty queue
	_         cacheLinePad
	buf       []runQueueSlot
	capacity  uint64
	size      uint64
	mask      uint64
}

func newRunQueue(capacity int) *runQueue {
	n := uint64(roundUpPow2(capacity))
	size := n * 2
	q := &runQueue{
		buf:      make([]runQueueSlot, size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.Store(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		q.buf[i].cycle.Store(i / n)
	}
	return q
}

func (q *runQueue) Cap() int { return int(q.capacity) }

// push enqueues a task. Owner-only (single producer). Returns false if the
// queue is logically full (the caller — worker.submitLocal — falls back
// to the global queue in that case).
func (q *runQueue) push(t DrainTask) bool {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail >= head+q.capacity {
		return false
	}

	cycle := tail / q.capacity
	slot := &q.buf[tail&q.mask]
	if slot.cycle.Load() != cycle {
		return false
	}

	slot.task = t
	slot.cycle.Store(cycle + 1)
	q.tail.Store(tail + 1)
	q.threshold.Store(3*int64(q.capacity) - 1)
	return true
}

// pop removes one task. Safe to call concurrently from many goroutines:
// the owning worker draining its own backlog, and any other worker
// stealing from it.
func (q *runQueue) pop() (DrainTask, bool) {
	if q.threshold.Load() < 0 {
		return DrainTask{}, false
	}

	for {
		myHead := q.head.Add(1) - 1
		slot := &q.buf[myHead&q.mask]
		expectedCycle := myHead/q.capacity + 1
		slotCycle := slot.cycle.Load()

		if slotCycle == expectedCycle {
			t := slot.task
			slot.task = DrainTask{}
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.Store(nextEnqCycle)
			return t, true
		}

		if int64(slotCycle) < int64(expectedCycle) {
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.CompareAndSwap(slotCycle, nextEnqCycle)

			tail := q.tail.Load()
			if tail <= myHead+1 {
				q.catchUp(tail, myHead+1)
				q.threshold.Add(-1)
				return DrainTask{}, false
			}
			if q.threshold.Add(-1) <= 0 {
				return DrainTask{}, false
			}
		}
		runtime.Gosched()
	}
}

func (q *runQueue) catchUp(tail, head uint64) {
	for tail < head {
		if q.tail.CompareAndSwap(tail, head) {
			return
		}
		tail = q.tail.Load()
		head = q.head.Load()
	}
}
