package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	cfg := DefaultConfig()
	cfg.WorkerThreads = 2
	cfg.MailboxCapacity = 64
	cfg.GlobalQueueCapacity = 64
	cfg.WorkerQueueCapacity = 64

	sys, err := NewSystem(cfg)
	require.NoError(t, err)
	require.NoError(t, sys.Start())
	t.Cleanup(func() { _ = sys.Shutdown() })
	return sys
}

type countingBehavior struct {
	seen *int
}

func (b *countingBehavior) Receive(ctx Context, msg Message) error {
	*b.seen++
	return nil
}

func TestSystem_SpawnSendAndProcess(t *testing.T) {
	sys := newTestSystem(t)

	seen := 0
	ref, err := sys.Spawn(func() Behavior { return &countingBehavior{seen: &seen} }, SpawnOptions{})
	require.NoError(t, err)

	require.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))

	require.Eventually(t, func() bool {
		st, ok := sys.ActorStats(ref.ID())
		return ok && st.MessagesProcessed == 1
	}, time.Second, time.Millisecond)
}

func TestSystem_StopIsIdempotent(t *testing.T) {
	sys := newTestSystem(t)

	ref, err := sys.Spawn(func() Behavior { return noopBehavior{} }, SpawnOptions{})
	require.NoError(t, err)

	assert.NoError(t, sys.Stop(ref.ID()))
	state, ok := sys.ActorState(ref.ID())
	require.True(t, ok)
	assert.Equal(t, Stopped, state)

	// A second Stop on an already-Stopped actor must also succeed with no
	// effect, per spec.md §8's idempotence requirement.
	assert.NoError(t, sys.Stop(ref.ID()))
	state, ok = sys.ActorState(ref.ID())
	require.True(t, ok)
	assert.Equal(t, Stopped, state)
}

type noopBehavior struct{}

func (noopBehavior) Receive(ctx Context, msg Message) error { return nil }

func TestSystem_SendToUnknownActorFails(t *testing.T) {
	sys := newTestSystem(t)
	err := sys.sendFrom(NewActorId(0, 0, 99999), NewUserMessage(ActorId(0), ActorId(0)), nil)
	assert.ErrorIs(t, err, ErrActorNotRunning)
}

func TestSystem_ShutdownStopsChildrenBeforeParent(t *testing.T) {
	sys := newTestSystem(t)

	order := make([]string, 0, 2)
	parentRef, err := sys.Spawn(func() Behavior {
		return &orderTrackingBehavior{label: "parent", order: &order}
	}, SpawnOptions{})
	require.NoError(t, err)

	_, err = sys.Spawn(func() Behavior {
		return &orderTrackingBehavior{label: "child", order: &order}
	}, SpawnOptions{Parent: parentRef.ID(), HasParent: true})
	require.NoError(t, err)

	require.NoError(t, sys.Shutdown())
	require.Len(t, order, 2)
	assert.Equal(t, "child", order[0], "children must stop before their parent")
	assert.Equal(t, "parent", order[1])
}

type orderTrackingBehavior struct {
	label string
	order *[]string
}

func (b *orderTrackingBehavior) Receive(ctx Context, msg Message) error { return nil }
func (b *orderTrackingBehavior) PostStop(ctx Context) error {
	*b.order = append(*b.order, b.label)
	return nil
}
