package actor

import (
	"errors"
	"fmt"
)

// Error taxonomy for the actor core (SPEC_FULL.md §7). These are sentinel
// values rather than typed errors wherever no extra context is needed,
// matching hayabusa-cloud-lfq's ErrWouldBlock/IsWouldBlock idiom.
var (
	// ErrMailboxFull is returned by a send when the target's mailbox ring
	// is at capacity (Mailbox.Enqueue reports Delivered=false). Sender-visible back-pressure; recovery is caller-chosen.
	ErrMailboxFull = errors.New("actor: mailbox full")

	// ErrActorNotRunning is returned when sending to an actor whose state
	// is Stopping, Stopped, or Failed.
	ErrActorNotRunning = errors.New("actor: actor not running")

	// ErrPayloadTooLarge is returned by Message.SetData when the payload
	// exceeds InlineCap bytes.
	ErrPayloadTooLarge = errors.New("actor: payload exceeds inline capacity")

	// ErrInvalidStateTransition is returned when a lifecycle transition is
	// attempted from a state that does not permit it.
	ErrInvalidStateTransition = errors.New("actor: invalid state transition")

	// ErrSchedulerOverflow is returned by Scheduler.Submit when the global
	// queue is full, and by a worker's local submit when both its local
	// run-queue and the global queue are full.
	ErrSchedulerOverflow = errors.New("actor: scheduler queues full")

	// ErrSystemShuttingDown is returned by System.Spawn when the system is
	// not Running, and by sends of User messages once shutdown has begun.
	ErrSystemShuttingDown = errors.New("actor: system shutting down")

	// ErrActorNotFound is returned by System.Stop for an unknown id.
	ErrActorNotFound = errors.New("actor: actor not found")
)

// BehaviorError wraps an error raised by user behavior code during
// Receive, tagged with the id of the actor that raised it. It is never
// returned to a sender; Actor.drain hands it to the supervisor contract
// and it is surfaced only through supervisor hooks and stats.
type BehaviorError struct {
	ActorID ActorId
	Err     error
}

func (e *BehaviorError) Error() string {
	return fmt.Sprintf("actor %s: behavior error: %v", e.ActorID, e.Err)
}

func (e *BehaviorError) Unwrap() error { return e.Err }
