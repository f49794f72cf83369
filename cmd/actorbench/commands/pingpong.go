package commands

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var pingpongCmd = &cobra.Command{
	Use:   "pingpong",
	Short: "Bounce messages between two actors",
	Long: `pingpong spawns a ping and a pong actor, each of which replies to
its sender through Context.Send, and drives --iterations round trips.
This exercises the worker-thread local-queue fast path for Send, since
every reply is issued from inside Behavior.Receive.`,
	RunE: runPingPong,
}

type pongBehavior struct {
	rounds *atomic.Int64
	done   chan struct{}
	target int64
}

func (b *pongBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	if n := b.rounds.Add(1); n >= b.target {
		close(b.done)
		return nil
	}
	return ctx.Send(msg.Sender, actor.NewUserMessage(ctx.Self(), msg.Sender))
}

type pingBehavior struct {
	pong actor.ActorId
}

func (b *pingBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	return ctx.Send(b.pong, actor.NewUserMessage(ctx.Self(), b.pong))
}

func runPingPong(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	rounds := &atomic.Int64{}
	done := make(chan struct{})

	pongRef, err := sys.Spawn(func() actor.Behavior {
		return &pongBehavior{rounds: rounds, done: done, target: int64(iterations)}
	}, actor.SpawnOptions{Name: "pong"})
	if err != nil {
		return err
	}

	pingRef, err := sys.Spawn(func() actor.Behavior {
		return &pingBehavior{pong: pongRef.ID()}
	}, actor.SpawnOptions{Name: "ping"})
	if err != nil {
		return err
	}

	start := time.Now()
	if err := pingRef.Send(actor.NewUserMessage(pongRef.ID(), pingRef.ID())); err != nil {
		return err
	}

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("pingpong: timed out after %d rounds", rounds.Load())
	}
	elapsed := time.Since(start)

	if !quiet {
		fmt.Printf("pingpong: completed %d round trips\n", iterations)
	}
	printStats("pingpong", sys, elapsed)
	return nil
}
