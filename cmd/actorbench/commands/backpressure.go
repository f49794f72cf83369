package commands

import (
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var backpressureCmd = &cobra.Command{
	Use:   "backpressure",
	Short: "Flood a slow actor's mailbox until it reports full",
	Long: `backpressure spawns one deliberately slow actor with a small
mailbox and sends --iterations messages as fast as possible, counting
how many are rejected with ErrMailboxFull. Demonstrates the caller-
visible back-pressure spec.md mandates instead of an unbounded queue.`,
	RunE: runBackpressure,
}

type slowBehavior struct{}

func (slowBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	time.Sleep(time.Millisecond)
	return nil
}

func runBackpressure(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	ref, err := sys.Spawn(func() actor.Behavior { return slowBehavior{} },
		actor.SpawnOptions{Name: "slow", MailboxCapacity: 64})
	if err != nil {
		return err
	}

	start := time.Now()
	var rejected int
	for i := 0; i < iterations; i++ {
		msg := actor.NewUserMessage(actor.ActorId(0), ref.ID())
		if err := ref.Send(msg); err != nil {
			if err == actor.ErrMailboxFull {
				rejected++
				continue
			}
			return err
		}
	}
	elapsed := time.Since(start)

	if !quiet {
		fmt.Printf("backpressure: %d/%d sends rejected with ErrMailboxFull\n", rejected, iterations)
	}
	printStats("backpressure", sys, elapsed)
	return nil
}
