package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Drive an actor into repeated failures and watch it restart",
	Long: `restart spawns an actor whose behavior fails on every tenth
message. The default supervisor restarts it up to RestartPolicy's
MaxRestarts within its window, backing off between restarts, then
escalates. Prints the final restart count and lifecycle state.`,
	RunE: runRestart,
}

var errFlaky = errors.New("flaky behavior: simulated failure")

type flakyBehavior struct {
	count int
}

func (b *flakyBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	b.count++
	if b.count%10 == 0 {
		return errFlaky
	}
	return nil
}

func runRestart(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	ref, err := sys.Spawn(func() actor.Behavior { return &flakyBehavior{} },
		actor.SpawnOptions{Name: "flaky"})
	if err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		_ = ref.Send(actor.NewUserMessage(actor.ActorId(0), ref.ID()))
	}
	time.Sleep(500 * time.Millisecond)
	elapsed := time.Since(start)

	st, ok := sys.ActorStats(ref.ID())
	state, _ := sys.ActorState(ref.ID())
	if !quiet {
		if ok {
			fmt.Printf("restart: restarts=%d errors=%d final_state=%s\n", st.Restarts, st.BehaviorErrors, state)
		} else {
			fmt.Printf("restart: actor escalated out of the registry, final_state=%s\n", state)
		}
	}
	printStats("restart", sys, elapsed)
	return nil
}
