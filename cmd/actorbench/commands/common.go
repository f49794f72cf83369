package commands

import (
	"fmt"
	"time"

	"github.com/lguibr/actorcore/actor"
)

// newSystem builds and starts an actor.System from the CLI's persistent
// flags, rounding mailboxCap up the way actor.NewMailbox does.
func newSystem() (*actor.System, error) {
	cfg := actor.DefaultConfig()
	cfg.WorkerThreads = workers
	cfg.MailboxCapacity = nextPow2(mailboxCap)

	sys, err := actor.NewSystem(cfg)
	if err != nil {
		return nil, fmt.Errorf("actorbench: building system: %w", err)
	}
	if err := sys.Start(); err != nil {
		return nil, fmt.Errorf("actorbench: starting system: %w", err)
	}
	return sys, nil
}

func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}

// printStats renders a scheduler-wide stats snapshot plus how long the
// scenario took.
func printStats(label string, sys *actor.System, elapsed time.Duration) {
	stats := sys.Stats()
	fmt.Printf("%s: elapsed=%s overflow=%d parks=%d workers=%d\n",
		label, elapsed, stats.OverflowCount, stats.ParkCount, len(stats.Workers))
	for i, w := range stats.Workers {
		fmt.Printf("  worker[%d]: processed=%d stolen=%d steal_attempts=%d\n",
			i, w.TasksProcessed, w.TasksStolen, w.StealsAttempted)
	}
}
