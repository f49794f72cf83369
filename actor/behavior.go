package actor

// Behavior is user-provided code driving one actor: it must implement
// Receive, and may optionally implement any of the lifecycle hooks below.
// Grounded on bollywood/actor.go's single-method Actor interface, extended
// with the optional hooks spec.md §3/§4.4/§4.6 require, checked for via
// type assertion the way hayabusa-cloud-lfq's optional Drainer interface
// is (types.go).
type Behavior interface {
	// Receive processes one message. An error return is never propagated
	// to the caller of Send; it is captured and handed to the actor's
	// supervisor (spec.md §4.4 step 3).
	Receive(ctx Context, msg Message) error
}

// PreStarter is implemented by behaviors that need setup before entering
// Running. Runs during the Starting state.
type PreStarter interface {
	PreStart(ctx Context) error
}

// PostStopper is implemented by behaviors that need teardown. Runs during
// the Stopping state, after the last message it will ever process.
type PostStopper interface {
	PostStop(ctx Context) error
}

// PreRestarter is implemented by behaviors that need to save or release
// state before a restart discards the current behavior instance.
type PreRestarter interface {
	PreRestart(ctx Context, reason error) error
}

// PostRestarter is implemented by behaviors that need to re-initialize
// after a restart constructs a fresh behavior instance via its Producer.
type PostRestarter interface {
	PostRestart(ctx Context, reason error) error
}

// Producer constructs a fresh Behavior instance. Used both at spawn time
// and on every restart to rebuild the behavior (spec.md §4.6);
// RestartMailboxPolicy affects only the queued messages. Grounded on bollywood/props.go's Producer func
// type.
type Producer func() Behavior

// Context is passed to every Behavior hook, giving it access to its own
// id, the sender of the current message (if any), and the ability to send
// further messages or spawn children through the owning System. Grounded
// on bollywood/context.go's Context interface.
type Context interface {
	// Self returns the id of the actor processing this message.
	Self() ActorId
	// Sender returns the id of the actor that sent the current message,
	// or the zero ActorId if it originated outside the actor system.
	Sender() ActorId
	// System returns the ActorSystem this actor belongs to.
	System() *System
	// Send delivers msg to the actor identified by to, using this
	// context's worker as the fast local-queue publisher when the
	// enqueue requires scheduling a new drain task (spec.md §4.5).
	Send(to ActorId, msg Message) error
	// Stop requests that the actor identified by id stop, routing the
	// request through this context's worker so a self-targeted Stop
	// (id == Self()) never blocks the very drain call making the
	// request.
	Stop(id ActorId) error
}

type actorContext struct {
	self   ActorId
	sender ActorId
	system *System
	worker *worker
}

func (c *actorContext) Self() ActorId   { return c.self }
func (c *actorContext) Sender() ActorId { return c.sender }
func (c *actorContext) System() *System { return c.system }
func (c *actorContext) Send(to ActorId, msg Message) error {
	return c.system.sendFrom(to, msg, c.worker)
}
func (c *actorContext) Stop(id ActorId) error {
	return c.system.stopFrom(id, c.worker)
}
