package commands

import (
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
	"github.com/spf13/cobra"
)

var echoCmd = &cobra.Command{
	Use:   "echo",
	Short: "Spawn one actor and send it iterations messages",
	Long: `echo spawns a single actor whose behavior does nothing (the
actor's own stats count processed messages), then sends it --iterations
messages from the calling goroutine and waits
for them all to be processed. This exercises the single-producer
mailbox path and the scheduler's submit-from-non-worker path.`,
	RunE: runEcho,
}

type echoBehavior struct{}

func (echoBehavior) Receive(ctx actor.Context, msg actor.Message) error {
	return nil
}

func runEcho(cmd *cobra.Command, args []string) error {
	sys, err := newSystem()
	if err != nil {
		return err
	}
	defer sys.Shutdown()

	ref, err := sys.Spawn(func() actor.Behavior { return echoBehavior{} }, actor.SpawnOptions{Name: "echo"})
	if err != nil {
		return err
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		msg := actor.NewUserMessage(actor.ActorId(0), ref.ID())
		if err := ref.Send(msg); err != nil {
			return fmt.Errorf("echo: send %d: %w", i, err)
		}
	}

	for {
		st, _ := sys.ActorStats(ref.ID())
		if st.MessagesProcessed >= uint64(iterations) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	elapsed := time.Since(start)

	if !quiet {
		fmt.Printf("echo: processed %d messages\n", iterations)
	}
	printStats("echo", sys, elapsed)
	return nil
}
