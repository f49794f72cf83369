package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailbox_FirstEnqueueRequestsSchedule(t *testing.T) {
	mb := NewMailbox(8)

	outcome := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	assert.True(t, outcome.Delivered)
	assert.True(t, outcome.ShouldSchedule)

	outcome2 := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	assert.True(t, outcome2.Delivered)
	assert.False(t, outcome2.ShouldSchedule, "pending is already true, second enqueue should not request a new drain task")
}

func TestMailbox_EnqueueFailsWhenFull(t *testing.T) {
	mb := NewMailbox(2) // rounds up to 2

	assert.True(t, mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1))).Delivered)
	assert.True(t, mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1))).Delivered)
	assert.False(t, mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1))).Delivered)
}

func TestMailbox_MarkIdleThenRearmOnRace(t *testing.T) {
	mb := NewMailbox(8)

	outcome := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	assert.True(t, outcome.ShouldSchedule)

	_, _ = mb.drainOne()

	// Simulate a message arriving after the drain loop stopped draining
	// but before markIdle runs.
	mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	nonEmpty := mb.markIdle()
	assert.True(t, nonEmpty)

	ok, token := mb.rearm()
	assert.True(t, ok)
	assert.True(t, mb.matchesGeneration(token))
}

func TestMailbox_MarkIdleOnEmptyReportsNoRearmNeeded(t *testing.T) {
	mb := NewMailbox(8)
	outcome := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	assert.True(t, outcome.ShouldSchedule)

	_, _ = mb.drainOne()
	nonEmpty := mb.markIdle()
	assert.False(t, nonEmpty)
}

func TestDrainTask_StaleDetectsSupersededToken(t *testing.T) {
	mb := NewMailbox(8)
	a := &Actor{mailbox: mb}

	outcome := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	task := DrainTask{actorRef: a, token: outcome.Token}
	assert.False(t, task.stale())

	_, _ = mb.drainOne()
	mb.markIdle()
	mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1))) // bumps the generation

	assert.True(t, task.stale())
}
