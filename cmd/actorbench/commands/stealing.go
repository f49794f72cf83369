package commands

import (
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var stealingCmd = &cobra.Command{
	Use:   "stealing",
	Short: "Spread load over a few hot actors and report steal counters",
	Long: `stealing spawns four actors and sends --iterations messages to them
round-robin from the calling goroutine, so their first drain tasks go
through the global queue and re-armed ones onto the local run-queue of
whichever worker drained the actor. The printed per-worker counters show
how many tasks each worker processed and stole.`,
	RunE: runStealing,
}

type counterBehavior struct{}

func (counterBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	return nil
}

func runStealing(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	const hotActors = 4
	refs := make([]actor.ActorRef, hotActors)
	for i := range refs {
		ref, err := sys.Spawn(func() actor.Behavior { return counterBehavior{} },
			actor.SpawnOptions{Name: fmt.Sprintf("hot-%d", i)})
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		ref := refs[i%hotActors]
		if err := ref.Send(actor.NewUserMessage(actor.ActorId(0), ref.ID())); err != nil {
			return err
		}
	}

	for {
		total := uint64(0)
		for _, ref := range refs {
			st, _ := sys.ActorStats(ref.ID())
			total += st.MessagesProcessed
		}
		if total >= uint64(iterations) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	elapsed := time.Since(start)

	if !quiet {
		fmt.Printf("stealing: %d messages spread across %d hot actors\n", iterations, hotActors)
	}
	printStats("stealing", sys, elapsed)
	return nil
}
