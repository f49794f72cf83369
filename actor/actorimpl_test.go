package actor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P1: pending = true implies a drain task for the actor is either queued
// or executing (spec.md §8).
func TestActor_PendingImpliesQueuedOrExecutingDrain(t *testing.T) {
	mb := NewMailbox(8)

	outcome := mb.Enqueue(NewUserMessage(ActorId(0), ActorId(1)))
	require.True(t, outcome.ShouldSchedule)
	assert.True(t, mb.pending.Load())

	_, ok := mb.drainOne()
	require.True(t, ok)
	nonEmpty := mb.markIdle()
	assert.False(t, nonEmpty)
	assert.False(t, mb.pending.Load())
}

// P3: at most one worker calls drain for a given actor simultaneously
// (spec.md §8). Blasts messages at one actor from many goroutines across
// a multi-worker scheduler and has Receive itself detect re-entrance.
type exclusivityBehavior struct {
	active   atomic.Bool
	violated *atomic.Bool
}

func (b *exclusivityBehavior) Receive(ctx Context, msg Message) error {
	if !b.active.CompareAndSwap(false, true) {
		b.violated.Store(true)
		return nil
	}
	defer b.active.Store(false)
	return nil
}

func TestActor_DrainIsExclusivePerActor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerThreads = 8
	cfg.MailboxCapacity = 4096
	cfg.GlobalQueueCapacity = 4096
	cfg.WorkerQueueCapacity = 1024
	sys, err := NewSystem(cfg)
	require.NoError(t, err)
	require.NoError(t, sys.Start())
	t.Cleanup(func() { _ = sys.Shutdown() })

	violated := &atomic.Bool{}
	ref, err := sys.Spawn(func() Behavior {
		return &exclusivityBehavior{violated: violated}
	}, SpawnOptions{})
	require.NoError(t, err)

	const senders = 16
	const perSender = 200

	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				_ = ref.Send(NewUserMessage(ActorId(0), ref.ID()))
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		st, _ := sys.ActorStats(ref.ID())
		return st.MessagesProcessed == uint64(senders*perSender)
	}, 5*time.Second, time.Millisecond)

	assert.False(t, violated.Load())
}

// Regression test for the Actor.stop / in-flight Receive race: stop must
// never run PostStop concurrently with a Receive call still in progress
// for the same actor. Both hooks fight over the same active flag so any
// overlap flips violated.
type stopRaceBehavior struct {
	active   atomic.Bool
	violated *atomic.Bool
	sleep    time.Duration
}

func (b *stopRaceBehavior) Receive(ctx Context, msg Message) error {
	if !b.active.CompareAndSwap(false, true) {
		b.violated.Store(true)
	}
	time.Sleep(b.sleep)
	b.active.Store(false)
	return nil
}

func (b *stopRaceBehavior) PostStop(ctx Context) error {
	if !b.active.CompareAndSwap(false, true) {
		b.violated.Store(true)
	}
	time.Sleep(b.sleep)
	b.active.Store(false)
	return nil
}

func TestActor_StopSerializesWithInFlightReceive(t *testing.T) {
	sys := newTestSystem(t)

	violated := &atomic.Bool{}
	ref, err := sys.Spawn(func() Behavior {
		return &stopRaceBehavior{violated: violated, sleep: 20 * time.Millisecond}
	}, SpawnOptions{})
	require.NoError(t, err)

	require.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))
	time.Sleep(2 * time.Millisecond) // let Receive start and grab the active flag

	require.NoError(t, sys.Stop(ref.ID()))

	state, ok := sys.ActorState(ref.ID())
	require.True(t, ok)
	assert.Equal(t, Stopped, state)
	assert.False(t, violated.Load())
}

// Actor.stop, called directly (not through System.Stop), is idempotent:
// a second call on an already-Stopped actor is a no-op that still
// returns nil (spec.md §8).
func TestActor_DirectStopIsIdempotent(t *testing.T) {
	schedCfg := DefaultSchedulerConfig()
	schedCfg.WorkerThreads = 2
	sched := NewScheduler(schedCfg)
	require.NoError(t, sched.Start())
	defer sched.Stop()

	sys := &System{scheduler: sched}
	a := newActorInternal(NewActorId(0, 0, 1), sys, func() Behavior { return noopBehavior{} }, 8, 4, rootSupervisor{}, ActorId(0), false, PreserveMailbox)
	require.NoError(t, a.start())

	assert.NoError(t, a.stop())
	assert.Equal(t, Stopped, a.State())

	assert.NoError(t, a.stop())
	assert.Equal(t, Stopped, a.State())
}

// Stop requested from inside an actor's own Receive (the common
// self-shutdown pattern) must not deadlock: requestStop detects it is
// running on the actor's own drain call and returns without waiting for
// the signal it just enqueued, trusting the same drain loop to pick it
// up on its next iteration.
func TestActor_SelfStopFromReceiveDoesNotDeadlock(t *testing.T) {
	sys := newTestSystem(t)

	ref, err := sys.Spawn(func() Behavior { return &selfStoppingBehavior{} }, SpawnOptions{})
	require.NoError(t, err)

	require.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))

	require.Eventually(t, func() bool {
		state, _ := sys.ActorState(ref.ID())
		return state == Stopped
	}, time.Second, time.Millisecond)
}

type selfStoppingBehavior struct{}

func (selfStoppingBehavior) Receive(ctx Context, msg Message) error {
	return ctx.Stop(ctx.Self())
}

// spec.md §6's actor_ref.send_system(kind) operation: SendSystem builds
// and delivers a message of the given Kind, reaching Receive with that
// Kind intact (covers the "Control is reachable through the public API"
// finding alongside the stop-signal routing above).
type kindRecordingBehavior struct {
	mu   sync.Mutex
	seen []Kind
}

func (b *kindRecordingBehavior) Receive(ctx Context, msg Message) error {
	b.mu.Lock()
	b.seen = append(b.seen, msg.Kind)
	b.mu.Unlock()
	return nil
}

func TestActorRef_SendSystemDeliversGivenKind(t *testing.T) {
	sys := newTestSystem(t)

	beh := &kindRecordingBehavior{}
	ref, err := sys.Spawn(func() Behavior { return beh }, SpawnOptions{})
	require.NoError(t, err)

	require.NoError(t, ref.SendSystem(System))
	require.NoError(t, ref.SendSystem(Control))

	require.Eventually(t, func() bool {
		st, _ := sys.ActorStats(ref.ID())
		return st.MessagesProcessed == 2
	}, time.Second, time.Millisecond)

	beh.mu.Lock()
	defer beh.mu.Unlock()
	require.Len(t, beh.seen, 2)
	assert.Equal(t, System, beh.seen[0])
	assert.Equal(t, Control, beh.seen[1])
}

// gatedBehavior blocks every Receive call on proceed, so a test can fill
// a mailbox to an exact boundary without racing a concurrent drain.
type gatedBehavior struct {
	proceed chan struct{}
}

func (b *gatedBehavior) Receive(ctx Context, msg Message) error {
	<-b.proceed
	return nil
}

// Boundary: filling a mailbox to exactly capacity succeeds through
// Actor.send; the capacity+1st send returns ErrMailboxFull, and after one
// dequeue a further send succeeds again (spec.md §8).
func TestActor_SendBoundaryAtCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerThreads = 1
	cfg.MailboxCapacity = 8
	sys, err := NewSystem(cfg)
	require.NoError(t, err)
	require.NoError(t, sys.Start())
	t.Cleanup(func() { _ = sys.Shutdown() })

	proceed := make(chan struct{})
	ref, err := sys.Spawn(func() Behavior { return &gatedBehavior{proceed: proceed} }, SpawnOptions{})
	require.NoError(t, err)

	// The first message is popped from the mailbox and its Receive call
	// blocks on proceed, pinning the sole worker there so none of the
	// capacity sends below race a concurrent dequeue.
	require.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))
	time.Sleep(20 * time.Millisecond)

	queued := 0
	for queued < 8 {
		require.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))
		queued++
	}
	assert.Equal(t, 8, queued)

	err = ref.Send(NewUserMessage(ActorId(0), ref.ID()))
	assert.ErrorIs(t, err, ErrMailboxFull)

	close(proceed)
	require.Eventually(t, func() bool {
		st, _ := sys.ActorStats(ref.ID())
		return st.MessagesProcessed == 9
	}, time.Second, time.Millisecond)

	assert.NoError(t, ref.Send(NewUserMessage(ActorId(0), ref.ID())))
}

// Wrap-around: sending several multiples of the ring's capacity in
// sequence delivers every message, in order, to Receive (spec.md §8's
// capacity invariant P6 plus the per-sender FIFO property P2).
type orderRecordingBehavior struct {
	mu   sync.Mutex
	seen []int
}

func (b *orderRecordingBehavior) Receive(ctx Context, msg Message) error {
	b.mu.Lock()
	b.seen = append(b.seen, int(msg.Data()[0])|int(msg.Data()[1])<<8)
	b.mu.Unlock()
	return nil
}

func TestActor_WrapAroundDeliversAllMessagesInOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerThreads = 1
	cfg.MailboxCapacity = 16
	sys, err := NewSystem(cfg)
	require.NoError(t, err)
	require.NoError(t, sys.Start())
	t.Cleanup(func() { _ = sys.Shutdown() })

	beh := &orderRecordingBehavior{}
	ref, err := sys.Spawn(func() Behavior { return beh }, SpawnOptions{})
	require.NoError(t, err)

	const total = 16 * 4
	sent := 0
	for sent < total {
		msg := NewUserMessage(ActorId(0), ref.ID())
		require.NoError(t, msg.SetData([]byte{byte(sent), byte(sent >> 8)}))
		switch err := ref.Send(msg); err {
		case nil:
			sent++
		case ErrMailboxFull:
			time.Sleep(100 * time.Microsecond)
		default:
			require.NoError(t, err)
		}
	}

	require.Eventually(t, func() bool {
		st, _ := sys.ActorStats(ref.ID())
		return st.MessagesProcessed == uint64(total)
	}, 5*time.Second, time.Millisecond)

	beh.mu.Lock()
	defer beh.mu.Unlock()
	require.Len(t, beh.seen, total)
	for i, v := range beh.seen {
		assert.Equal(t, i, v)
	}
}
