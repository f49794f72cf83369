package actor

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBatchSize is the default number of messages Actor.drain
// processes from one actor per dispatch (spec.md §4.4, §6).
const DefaultBatchSize = 128

// RestartMailboxPolicy controls whether an actor's queued messages
// survive a supervised restart (spec.md §9, open question 2).
type RestartMailboxPolicy uint8

const (
	// PreserveMailbox keeps queued messages across a restart. Default.
	PreserveMailbox RestartMailboxPolicy = iota
	// DiscardMailbox drops queued messages when a restart begins.
	DiscardMailbox
)

// Actor is the runtime instance of one spawned behavior: identity,
// lifecycle state, mailbox, the current Behavior value, its Producer (for
// restarts), and a back-reference to its System for supervision.
// Lifetime is reference-counted in effect by whoever holds a *Actor:
// the System's registry and any DrainTask referencing it; Go's garbage
// collector performs the actual reclamation once both drop their
// references, per spec.md §9's note that this is implicit in a GC'd
// target.
type Actor struct {
	id      ActorId
	system  *System
	mailbox *Mailbox

	state *stateBox

	producer Producer
	behavior Behavior
	behMu    sync.RWMutex

	supervisor     Supervisor
	parent         ActorId
	hasParent      bool
	mailboxPolicy  RestartMailboxPolicy
	batchBudget    int

	stats actorStats
}

type actorStats struct {
	received  atomic.Uint64
	processed atomic.Uint64
	dropped   atomic.Uint64
	errors    atomic.Uint64
	restarts  atomic.Uint64
}

// Stats is a point-in-time snapshot of one actor's counters.
// MessagesReceived is counted at enqueue success and MessagesProcessed in
// Actor.drain; the other counters at the drop, error and restart sites.
type Stats struct {
	MessagesReceived  uint64
	MessagesProcessed uint64
	MessagesDropped   uint64
	BehaviorErrors    uint64
	Restarts          uint64
}

// Stats returns a snapshot of this actor's counters.
func (a *Actor) Stats() Stats {
	return Stats{
		MessagesReceived:  a.stats.received.Load(),
		MessagesProcessed: a.stats.processed.Load(),
		MessagesDropped:   a.stats.dropped.Load(),
		BehaviorErrors:    a.stats.errors.Load(),
		Restarts:          a.stats.restarts.Load(),
	}
}

// ID returns this actor's ActorId.
func (a *Actor) ID() ActorId { return a.id }

// State returns this actor's current lifecycle state.
func (a *Actor) State() State { return a.state.load() }

// Mailbox exposes the actor's mailbox so tests and backpressure scenarios
// can query its length.
func (a *Actor) Mailbox() *Mailbox { return a.mailbox }

func newActorInternal(id ActorId, sys *System, producer Producer, mailboxCap, batchBudget int, sup Supervisor, parent ActorId, hasParent bool, policy RestartMailboxPolicy) *Actor {
	return &Actor{
		id:            id,
		system:        sys,
		mailbox:       NewMailbox(mailboxCap),
		state:         newStateBox(Created),
		producer:      producer,
		supervisor:    sup,
		parent:        parent,
		hasParent:     hasParent,
		mailboxPolicy: policy,
		batchBudget:   batchBudget,
	}
}

// start drives Created -> Starting -> Running, invoking PreStart if the
// behavior implements it (spec.md §3, §4.4).
func (a *Actor) start() error {
	if err := a.state.transition(Starting, Created); err != nil {
		return err
	}

	a.behMu.Lock()
	a.behavior = a.producer()
	beh := a.behavior
	a.behMu.Unlock()

	if hook, ok := beh.(PreStarter); ok {
		ctx := &actorContext{self: a.id, system: a.system}
		if err := hook.PreStart(ctx); err != nil {
			// A failing PreStart means the actor never becomes
			// Running. Fail straight to Failed.
			_ = a.state.transition(Failed, Starting)
			return err
		}
	}

	return a.state.transition(Running, Starting)
}

// send enqueues msg and, if the mailbox just transitioned pending to
// true, publishes a fresh drain task to the scheduler (spec.md §4.4). w
// is the worker currently executing, if this call originates from inside
// a Behavior.Receive callback; nil if it originates from an external
// caller, matching spec.md §4.5's submit algorithm distinction between a
// worker-thread caller (local-queue fast path) and any other thread
// (straight to the global queue).
func (a *Actor) send(msg Message, w *worker) error {
	st := a.state.load()
	if st == Stopping {
		// Default stopping policy: reject and count user messages, accept
		// Control messages into the mailbox.
		if msg.Kind != Control {
			a.stats.dropped.Add(1)
			return ErrActorNotRunning
		}
	} else if st != Running {
		return ErrActorNotRunning
	}

	outcome := a.mailbox.Enqueue(msg)
	if !outcome.Delivered {
		return ErrMailboxFull
	}
	a.stats.received.Add(1)

	if outcome.ShouldSchedule {
		a.publishDrain(w, outcome.Token)
	}
	return nil
}

func (a *Actor) publishDrain(w *worker, token uint32) {
	task := DrainTask{actorRef: a, token: token}
	if w != nil {
		if err := w.submitLocal(task); err == nil {
			return
		}
	}
	a.system.scheduler.submitWithRetry(task)
}

// drainWithWorker is the entry point a worker calls to execute a drain
// task for this actor (worker.execute).
func (a *Actor) drainWithWorker(w *worker) int {
	return a.drain(w)
}

// drain pops up to batchBudget messages and invokes Receive on each,
// handing Behavior errors to the supervisor contract. After the batch it
// calls markIdle and re-arms if the mailbox reports more work, avoiding
// the lost-wake-up spec.md §4.4 step 5 warns about. Returns the number of
// messages processed. Caller must be a worker thread and the actor's
// state must be Running (checked by the scheduler before invoking drain).
func (a *Actor) drain(w *worker) int {
	budget := a.batchBudget
	if budget <= 0 {
		budget = DefaultBatchSize
	}

	processed := 0
	for i := 0; i < budget; i++ {
		if a.state.load() != Running {
			break
		}
		msg, ok := a.mailbox.drainOne()
		if !ok {
			break
		}

		if msg.IsStopSignal() {
			_ = a.stopNow(w)
			processed++
			break
		}

		a.behMu.RLock()
		beh := a.behavior
		a.behMu.RUnlock()

		ctx := &actorContext{self: a.id, sender: msg.Sender, system: a.system, worker: w}
		if err := beh.Receive(ctx, msg); err != nil {
			a.stats.errors.Add(1)
			a.handleBehaviorError(err, w)
			// A Stop/Escalate-to-Stop decision transitions state away
			// from Running; stop draining immediately.
			if a.state.load() != Running {
				processed++
				break
			}
		}
		a.stats.processed.Add(1)
		processed++
	}

	if nonEmpty := a.mailbox.markIdle(); nonEmpty && a.state.load() == Running {
		if ok, token := a.mailbox.rearm(); ok {
			a.publishDrain(w, token)
		}
	}
	return processed
}

func (a *Actor) handleBehaviorError(err error, w *worker) {
	berr := &BehaviorError{ActorID: a.id, Err: err}
	directive := a.supervisor.Decide(a.id, berr)
	a.system.applyDirective(a, directive, berr, w)
}

// stop requests that this actor transition Running -> Stopping -> Stopped,
// invoking PostStop if the behavior implements it. Used by external
// callers (System.Stop, Shutdown) that are not themselves running inside
// a drain loop, so it blocks until the transition actually happens.
// Idempotent: a second call while already Stopping/Stopped/Failed returns
// nil with no effect, matching spec.md §8's idempotence requirement.
func (a *Actor) stop() error {
	return a.requestStop(nil)
}

// requestStop is the shared implementation behind stop and the
// supervisor's Stop directive. w is the worker executing the current
// call, if any. The transition and the PostStop hook never run directly
// on the caller's goroutine; instead a Control stop signal is routed
// through the mailbox so they run on whichever worker is draining this
// actor, serialized with any in-flight Receive call the same way
// bollywood/engine.go's Engine.Stop sends Stopping{} through the mailbox
// rather than mutating process state inline.
//
// When w is nil the caller is outside any drain loop, so requestStop
// blocks (with a bounded poll) until the signal is actually drained, the
// same observable-completion contract the old synchronous stop gave
// System.Stop and System.Shutdown's callers. When w is non-nil the
// caller is itself executing inside a drain loop — either this actor's
// own (a self-targeted Stop from Receive) or another actor's reacting to
// a supervisor directive — and requestStop must not block, since the
// drain loop that would process the signal is the very call on the
// stack waiting for it.
func (a *Actor) requestStop(w *worker) error {
	st := a.state.load()
	if st == Stopping || st == Stopped || st == Failed {
		return nil
	}
	if st == Created {
		// Never started: no drain loop exists yet to race against.
		return a.stopNow(nil)
	}

	outcome := a.mailbox.Enqueue(NewStopSignal(a.id))
	for attempt := 0; !outcome.Delivered && attempt < 64; attempt++ {
		time.Sleep(time.Millisecond)
		outcome = a.mailbox.Enqueue(NewStopSignal(a.id))
	}
	if !outcome.Delivered {
		// Sustained mailbox backpressure: force the transition directly
		// rather than leak the actor. Sacrifices serialization with an
		// in-flight drain in this one pathological case.
		return a.stopNow(w)
	}
	if outcome.ShouldSchedule {
		a.publishDrain(w, outcome.Token)
	}

	if w != nil {
		return nil
	}

	deadline := time.Now().Add(5 * time.Second)
	for a.state.load() != Stopped && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	return nil
}

// stopNow performs the Stopping -> Stopped transition and the PostStop
// call. Reached either directly (an actor that never started has no
// drain loop to race) or from Actor.drain after it pops the Control stop
// signal requestStop enqueued, so it always runs on the single worker
// currently serialized with this actor's Receive calls.
func (a *Actor) stopNow(w *worker) error {
	if err := a.state.transition(Stopping, Running, Starting, Created); err != nil {
		if a.state.load() == Stopping || a.state.load() == Stopped {
			return nil
		}
		return err
	}

	a.behMu.RLock()
	beh := a.behavior
	a.behMu.RUnlock()

	if beh != nil {
		if hook, ok := beh.(PostStopper); ok {
			ctx := &actorContext{self: a.id, system: a.system, worker: w}
			_ = hook.PostStop(ctx)
		}
	}

	return a.state.transition(Stopped, Stopping)
}

// restart runs PreRestart on the current behavior, optionally discards
// the mailbox per policy, constructs a fresh behavior via Producer, runs
// PostRestart, and returns to Running.
func (a *Actor) restart(reason error) error {
	if err := a.state.transition(Restarting, Running); err != nil {
		return err
	}

	a.behMu.Lock()
	old := a.behavior
	a.behMu.Unlock()

	if old != nil {
		if hook, ok := old.(PreRestarter); ok {
			ctx := &actorContext{self: a.id, system: a.system}
			_ = hook.PreRestart(ctx, reason)
		}
	}

	if a.mailboxPolicy == DiscardMailbox {
		for {
			if _, ok := a.mailbox.drainOne(); !ok {
				break
			}
		}
	}

	fresh := a.producer()
	a.behMu.Lock()
	a.behavior = fresh
	a.behMu.Unlock()

	if hook, ok := fresh.(PostRestarter); ok {
		ctx := &actorContext{self: a.id, system: a.system}
		_ = hook.PostRestart(ctx, reason)
	}

	a.stats.restarts.Add(1)
	return a.state.transition(Running, Restarting)
}
