package actor

// ActorRef is the external handle returned by System.Spawn (spec.md §6).
// It carries the actor's id and a reference to the owning system; sends
// through it look the actor up in the system's registry each time, which
// models spec.md §3's "weak reference, upgraded on send" — if the actor
// has since been removed, the lookup simply fails with
// ErrActorNotRunning instead of dereferencing freed memory the way a raw
// pointer would in a non-GC'd target.
type ActorRef struct {
	id     ActorId
	system *System
}

// ID returns the ActorId this reference points to.
func (r ActorRef) ID() ActorId { return r.id }

// Send enqueues msg for delivery to this actor, publishing a drain task
// if needed. Returns ErrActorNotRunning if the actor is not Running (or
// not accepting user messages while Stopping), ErrMailboxFull if its
// mailbox is at capacity, or ErrSystemShuttingDown if the system has
// begun shutdown and rejects the send outright.
func (r ActorRef) Send(msg Message) error {
	msg.Receiver = r.id
	return r.system.sendFrom(r.id, msg, nil)
}

// SendSystem constructs and sends a message of the given kind to this
// actor, per spec.md §6's actor_ref.send_system(kind) operation. The
// message carries no payload and no flags, so a Control message sent this
// way is not a stop signal and reaches Receive. Send delivers whatever
// Kind its argument already has.
func (r ActorRef) SendSystem(kind Kind) error {
	msg := newMessage(ActorId(0), r.id, kind)
	return r.system.sendFrom(r.id, msg, nil)
}
