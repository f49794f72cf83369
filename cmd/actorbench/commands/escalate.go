package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Exhaust a child's restart budget and watch escalation stop it",
	Long: `escalate spawns a parent and a child whose behavior always
fails. The child's supervisor has a restart budget of one, so its second
failure escalates to the parent's supervisor, which always stops. Prints
the child's final lifecycle state, which should be Stopped.`,
	RunE: runEscalate,
}

var errAlwaysFails = errors.New("doomed behavior: always fails")

type doomedBehavior struct{}

func (doomedBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	return errAlwaysFails
}

type parentBehavior struct{}

func (parentBehavior) Receive(ctx actor.Context, msg actor.Message) error { return nil }

func runEscalate(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	alwaysStop := actor.DefaultRestartPolicy()
	alwaysStop.Strategy = actor.Stop
	parentRef, err := sys.Spawn(func() actor.Behavior { return parentBehavior{} },
		actor.SpawnOptions{Name: "parent", Supervisor: actor.NewDefaultSupervisor(alwaysStop)})
	if err != nil {
		return err
	}

	tightBudget := actor.DefaultRestartPolicy()
	tightBudget.MaxRestarts = 1
	tightBudget.RestartWindow = time.Minute
	tightBudget.BackoffInitial = time.Millisecond
	childSupervisor := actor.NewDefaultSupervisor(tightBudget)

	childRef, err := sys.Spawn(func() actor.Behavior { return doomedBehavior{} },
		actor.SpawnOptions{
			Name:       "child",
			Parent:     parentRef.ID(),
			HasParent:  true,
			Supervisor: childSupervisor,
		})
	if err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < 5; i++ {
		_ = childRef.Send(actor.NewUserMessage(actor.ActorId(0), childRef.ID()))
		time.Sleep(20 * time.Millisecond)
	}
	elapsed := time.Since(start)

	state, ok := sys.ActorState(childRef.ID())
	if !quiet {
		if ok {
			fmt.Printf("escalate: child final_state=%s\n", state)
		} else {
			fmt.Printf("escalate: child removed from registry after escalation\n")
		}
	}
	printStats("escalate", sys, elapsed)
	return nil
}
