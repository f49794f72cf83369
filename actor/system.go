package actor

import (
	"log"
	"runtime"
	"sync"
)

// SpawnOptions configures one System.Spawn call (spec.md §6: "name,
// parent, mailbox cap").
type SpawnOptions struct {
	// Name is an optional human-readable label. Spawn does not store or
	// log it.
	Name string
	// Parent, if HasParent is true, makes this actor a child of Parent for
	// supervision escalation and for System.Shutdown's children-first
	// ordering.
	Parent    ActorId
	HasParent bool
	// MailboxCapacity overrides Config.MailboxCapacity for this actor if
	// non-zero.
	MailboxCapacity int
	// BatchSize overrides Config.BatchSize for this actor if non-zero.
	BatchSize int
	// Supervisor overrides the system's default supervisor for this
	// actor if non-nil.
	Supervisor Supervisor
}

// System is the top-level coordinator (spec.md §4.6): it owns the
// scheduler, the ActorId -> *Actor registry, and the default supervision
// policy. Grounded on bollywood/engine.go's Engine, generalized from a
// goroutine-per-actor dispatcher to a client of Scheduler.
type System struct {
	config    Config
	scheduler *Scheduler
	ids       idAllocator

	regMu    sync.RWMutex
	registry map[ActorId]*Actor
	children map[ActorId][]ActorId

	defaultSupervisor *DefaultSupervisor
	root              Supervisor

	state *stateBox
	logger *log.Logger
}

// NewSystem validates cfg and constructs a System in the Stopped state.
// Call Start before Spawn.
func NewSystem(cfg Config) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workers := cfg.WorkerThreads
	if workers < 1 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	schedCfg := SchedulerConfig{
		WorkerThreads:       workers,
		WorkerQueueCapacity: cfg.WorkerQueueCapacity,
		GlobalQueueCapacity: cfg.GlobalQueueCapacity,
		SpinCycles:          cfg.SpinCycles,
		EnableWorkStealing:  cfg.EnableWorkStealing,
	}

	sup := NewDefaultSupervisor(cfg.RestartPolicy)

	return &System{
		config:            cfg,
		scheduler:         NewScheduler(schedCfg),
		registry:          make(map[ActorId]*Actor),
		children:          make(map[ActorId][]ActorId),
		defaultSupervisor: sup,
		root:              rootSupervisor{},
		state:             newStateBox(Stopped),
		logger:            log.New(log.Writer(), "actorcore: ", log.LstdFlags),
	}, nil
}

// Start transitions the system (and its scheduler) to Running.
func (s *System) Start() error {
	if err := s.state.transition(Starting, Stopped); err != nil {
		return err
	}
	if err := s.scheduler.Start(); err != nil {
		return err
	}
	return s.state.transition(Running, Starting)
}

// Spawn allocates an ActorId, constructs and starts an actor, inserts it
// into the registry, and returns an ActorRef. If start fails, the actor
// is removed and the error is returned (spec.md §4.6).
func (s *System) Spawn(producer Producer, opts SpawnOptions) (ActorRef, error) {
	if s.state.load() != Running {
		return ActorRef{}, ErrSystemShuttingDown
	}

	mailboxCap := opts.MailboxCapacity
	if mailboxCap == 0 {
		mailboxCap = s.config.MailboxCapacity
	}
	batch := opts.BatchSize
	if batch == 0 {
		batch = s.config.BatchSize
	}
	sup := opts.Supervisor
	if sup == nil {
		sup = s.defaultSupervisor
	}

	affinity := uint16(0)
	if opts.HasParent {
		affinity = opts.Parent.Affinity()
	}
	id := s.ids.next(affinity)

	a := newActorInternal(id, s, producer, mailboxCap, batch, sup, opts.Parent, opts.HasParent, s.config.MailboxPolicy)

	s.regMu.Lock()
	s.registry[id] = a
	if opts.HasParent {
		s.children[opts.Parent] = append(s.children[opts.Parent], id)
	}
	s.regMu.Unlock()

	if err := a.start(); err != nil {
		s.regMu.Lock()
		delete(s.registry, id)
		s.regMu.Unlock()
		return ActorRef{}, err
	}

	return ActorRef{id: id, system: s}, nil
}

// lookup returns the live *Actor for id, or nil if it is not registered.
func (s *System) lookup(id ActorId) *Actor {
	s.regMu.RLock()
	a := s.registry[id]
	s.regMu.RUnlock()
	return a
}

// sendFrom enqueues msg for delivery to id, using w as the publishing
// worker for the local-queue fast path if non-nil.
func (s *System) sendFrom(id ActorId, msg Message, w *worker) error {
	if s.state.load() == Stopping && msg.Kind == User {
		return ErrSystemShuttingDown
	}
	a := s.lookup(id)
	if a == nil {
		return ErrActorNotRunning
	}
	msg.Receiver = id
	return a.send(msg, w)
}

// Stop looks up id and stops it. The actor stays in the registry after
// stopping so a second Stop call finds it again and observes the same
// idempotent no-op Actor.stop already provides (spec.md §8): removing the
// entry here would turn a repeat Stop into ErrActorNotFound instead.
// Returns ErrActorNotFound only if id was never registered at all.
func (s *System) Stop(id ActorId) error {
	return s.stopFrom(id, nil)
}

// stopFrom is Stop's worker-aware counterpart, used by Context.Stop so a
// Behavior stopping itself (or another actor) from inside Receive routes
// through the calling worker instead of blocking it (see
// Actor.requestStop).
func (s *System) stopFrom(id ActorId, w *worker) error {
	a := s.lookup(id)
	if a == nil {
		return ErrActorNotFound
	}
	return a.requestStop(w)
}

func (s *System) removeFromRegistry(id ActorId) {
	s.regMu.Lock()
	delete(s.registry, id)
	kids := s.children[id]
	delete(s.children, id)
	s.regMu.Unlock()
	_ = kids
}

// Shutdown transitions the system to Stopping, stops every registered
// actor in a deterministic children-before-parents order where a parent
// relation exists, stops the scheduler, and releases registry references
// (spec.md §4.6). Returns once every worker has joined.
func (s *System) Shutdown() error {
	if err := s.state.transition(Stopping, Running); err != nil {
		return err
	}

	s.regMu.RLock()
	roots := make([]ActorId, 0, len(s.registry))
	for id, a := range s.registry {
		if !a.hasParent {
			roots = append(roots, id)
		}
	}
	s.regMu.RUnlock()

	for _, id := range roots {
		s.stopSubtree(id)
	}

	// Anything left (e.g. orphaned by a parent that was already gone)
	// gets a final sweep.
	s.regMu.RLock()
	remaining := make([]ActorId, 0, len(s.registry))
	for id := range s.registry {
		remaining = append(remaining, id)
	}
	s.regMu.RUnlock()
	for _, id := range remaining {
		if a := s.lookup(id); a != nil {
			_ = a.stop()
			s.removeFromRegistry(id)
		}
	}

	if err := s.scheduler.Stop(); err != nil {
		return err
	}
	return s.state.transition(Stopped, Stopping)
}

// stopSubtree stops id's children before stopping id itself, matching
// spec.md §4.6's "children before parents if a parent relation exists."
func (s *System) stopSubtree(id ActorId) {
	s.regMu.RLock()
	kids := append([]ActorId(nil), s.children[id]...)
	s.regMu.RUnlock()

	for _, kid := range kids {
		s.stopSubtree(kid)
	}

	if a := s.lookup(id); a != nil {
		_ = a.stop()
		s.removeFromRegistry(id)
	}
}

// applyDirective carries out a supervisor's decision for a failed actor:
// Resume is a no-op, Restart calls Actor.restart, Stop calls
// Actor.requestStop with the current worker,
// Escalate forwards to the parent's supervisor (or the system's root
// policy, which always Stops) and then applies whatever directive comes
// back.
func (s *System) applyDirective(a *Actor, d Directive, reason *BehaviorError, w *worker) {
	switch d {
	case Resume:
		return
	case Restart:
		if err := a.restart(reason); err != nil {
			s.logger.Printf("actor %s: restart failed: %v", a.id, err)
		}
	case Stop:
		_ = a.requestStop(w)
	case Escalate:
		parentDirective := s.root.Decide(a.id, reason)
		if a.hasParent {
			if parent := s.lookup(a.parent); parent != nil {
				parentDirective = parent.supervisor.Decide(a.id, reason)
			}
		}
		s.applyDirective(a, parentDirective, reason, w)
	}
}

// Stats returns scheduler-wide and per-worker counters.
func (s *System) Stats() SchedulerStats { return s.scheduler.Stats() }

// ActorStats returns a snapshot of one actor's counters, or the zero
// value and false if id is not registered.
func (s *System) ActorStats(id ActorId) (Stats, bool) {
	a := s.lookup(id)
	if a == nil {
		return Stats{}, false
	}
	return a.Stats(), true
}

// ActorState returns the lifecycle state of id, or Stopped/false if it is
// not registered.
func (s *System) ActorState(id ActorId) (State, bool) {
	a := s.lookup(id)
	if a == nil {
		return Stopped, false
	}
	return a.State(), true
}
