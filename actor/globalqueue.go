package actor

import "sync/atomic"

// globalSlot is one ring slot tagged with a sequence number, the
// Vyukov/1024cores bounded MPMC queue technique: a slot is ready to write
// when its sequence equals the producer's position, and ready to read
// when its sequence equals position+1.
type globalSlot struct {
	seq  atomic.Uint64
	task DrainTask
}

// globalQueue is the scheduler's shared overflow queue (spec.md §4.5): a
// bounded multi-producer multi-consumer ring absorbing spillover from
// worker-local run-queues and carrying tasks submitted from non-worker
// threads. Grounded on the cycle/sequence-per-slot validation idiom shown
// throughout hayabusa-cloud-lfq's queue family, simplified to the
// classic n-slot CAS-based MPMC ring (rather than their 2n-slot FAA/SCQ
// scheme) since this queue is a spillover path, not the scheduler's hot
// loop — the per-worker runQueue carries that burden.
type globalQueue struct {
	_    cacheLinePad
	head atomic.Uint64
	_    cacheLinePad
	tail atomic.Uint64
	_    cacheLinePad
	buf  []globalSlot
	mask uint64
}

func newGlobalQueue(capacity int) *globalQueue {
	n := uint64(roundUpPow2(capacity))
	q := &globalQueue{
		buf:  make([]globalSlot, n),
		mask: n - 1,
	}
	for i := range q.buf {
		q.buf[i].seq.Store(uint64(i))
	}
	return q
}

func (q *globalQueue) Cap() int { return int(q.mask) + 1 }

// push enqueues a task. Safe for concurrent callers.
func (q *globalQueue) push(t DrainTask) bool {
	pos := q.tail.Load()
	for {
		slot := &q.buf[pos&q.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if q.tail.CompareAndSwap(pos, pos+1) {
				slot.task = t
				slot.seq.Store(pos + 1)
				return true
			}
			pos = q.tail.Load()
		case diff < 0:
			return false
		default:
			pos = q.tail.Load()
		}
	}
}

// pop removes one task. Safe for concurrent callers.
func (q *globalQueue) pop() (DrainTask, bool) {
	pos := q.head.Load()
	for {
		slot := &q.buf[pos&q.mask]
		seq := slot.seq.Load()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if q.head.CompareAndSwap(pos, pos+1) {
				t := slot.task
				slot.task = DrainTask{}
				slot.seq.Store(pos + q.mask + 1)
				return t, true
			}
			pos = q.head.Load()
		case diff < 0:
			return DrainTask{}, false
		default:
			pos = q.head.Load()
		}
	}
}

func (q *globalQueue) size() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}
