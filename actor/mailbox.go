package actor

import (
	"sync"
	"sync/atomic"
)

// EnqueueOutcome reports the result of Mailbox.Enqueue.
type EnqueueOutcome struct {
	// Delivered is true if the message was accepted into the ring.
	Delivered bool
	// ShouldSchedule is true if the caller just transitioned pending from
	// false to true and is therefore responsible for publishing a drain
	// task for this actor (spec.md §4.3).
	ShouldSchedule bool
	// Token is the pending-generation snapshot to stamp onto the drain
	// task this caller publishes, used to detect stale tasks later.
	Token uint32
}

// Mailbox is a per-actor FIFO queue of pending messages, backed by a
// bounded SPSC ring, plus the "pending" flag invariant I-PENDING requires:
// pending=true implies a drain task for this actor is either queued or
// executing. The ring itself is single-producer/single-consumer, so the
// mailbox enforces single-producer discipline above it with a mutex held
// only across the ring push (spec.md §4.3's lock-around-the-push option,
// see SPEC_FULL.md §4.3), the same
// shape as bollywood/engine.go's registry lock: acquire, touch one word,
// release.
type Mailbox struct {
	ring       *spscRing[Message]
	producerMu sync.Mutex
	pending    atomic.Bool
	pendingGen atomic.Uint32
}

// NewMailbox creates a mailbox backed by a ring of the given capacity
// (rounded up to a power of two).
func NewMailbox(capacity int) *Mailbox {
	return &Mailbox{ring: newSPSCRing[Message](capacity)}
}

// Cap returns the mailbox's ring capacity.
func (m *Mailbox) Cap() int { return m.ring.capacity() }

// Len returns a momentary snapshot of the number of queued messages.
func (m *Mailbox) Len() int { return m.ring.size() }

// Enqueue delivers msg from an arbitrary sender goroutine. Enqueues from
// multiple senders are linearizable and FIFO within any one sender; FIFO
// across distinct senders is not guaranteed (spec.md §4.3).
func (m *Mailbox) Enqueue(msg Message) EnqueueOutcome {
	m.producerMu.Lock()
	ok := m.ring.push(msg)
	m.producerMu.Unlock()

	if !ok {
		return EnqueueOutcome{Delivered: false}
	}

	if m.pending.CompareAndSwap(false, true) {
		gen := m.pendingGen.Add(1)
		return EnqueueOutcome{Delivered: true, ShouldSchedule: true, Token: gen}
	}
	return EnqueueOutcome{Delivered: true, ShouldSchedule: false}
}

// drainOne pops one message. Called only by the worker currently draining
// this actor.
func (m *Mailbox) drainOne() (Message, bool) {
	return m.ring.pop()
}

// markIdle clears pending with release semantics and returns whether the
// ring is non-empty, so the caller (Actor.drain) can decide to re-arm
// rather than lose a wake-up for messages that arrived mid-batch.
func (m *Mailbox) markIdle() (nonEmpty bool) {
	m.pending.Store(false)
	return !m.ring.isEmpty()
}

// rearm transitions pending back to true after markIdle observed more
// work, returning the generation token to stamp on the re-published
// drain task. Mirrors the CAS in Enqueue so only one of a racing sender
// and the draining worker wins the re-arm.
func (m *Mailbox) rearm() (ok bool, token uint32) {
	if m.pending.CompareAndSwap(false, true) {
		return true, m.pendingGen.Add(1)
	}
	return false, 0
}

// matchesGeneration reports whether token is still the mailbox's current
// pending generation, used by DrainTask.stale to discard tasks superseded
// by a later enqueue/re-arm.
func (m *Mailbox) matchesGeneration(token uint32) bool {
	return m.pending.Load() && m.pendingGen.Load() == token
}
