package actor

import "fmt"

// Config is the top-level configuration record for an ActorSystem,
// covering every recognized option in spec.md §6. Grounded on
// utils/config.go's plain struct + DefaultConfig() pattern.
type Config struct {
	// WorkerThreads is the number of scheduler workers. Zero means
	// auto-detect via runtime.NumCPU(), minimum 1.
	WorkerThreads int
	// WorkerQueueCapacity is the capacity of each worker's local
	// run-queue. Must be a power of two.
	WorkerQueueCapacity int
	// GlobalQueueCapacity is the capacity of the scheduler's global
	// overflow queue. Must be a power of two.
	GlobalQueueCapacity int
	// MailboxCapacity is the default per-actor mailbox capacity. Must be
	// a power of two.
	MailboxCapacity int
	// BatchSize is the max messages drained per actor per dispatch.
	BatchSize int
	// SpinCycles is the busy-wait iteration count before an idle worker
	// parks on the scheduler's condition variable.
	SpinCycles int
	// EnableWorkStealing toggles work-stealing among workers.
	EnableWorkStealing bool
	// RestartPolicy configures the default supervisor's restart rate
	// limiting and backoff.
	RestartPolicy RestartPolicy
	// MailboxPolicy controls whether a restart preserves or discards
	// queued messages (spec.md §9, open question 2).
	MailboxPolicy RestartMailboxPolicy
}

// DefaultConfig returns a Config populated with spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{
		WorkerThreads:       0,
		WorkerQueueCapacity: 4096,
		GlobalQueueCapacity: 32768,
		MailboxCapacity:     65536,
		BatchSize:           DefaultBatchSize,
		SpinCycles:          1000,
		EnableWorkStealing:  true,
		RestartPolicy:       DefaultRestartPolicy(),
		MailboxPolicy:       PreserveMailbox,
	}
}

// Validate checks that every capacity is a power of two, as spec.md §6
// mandates ("the constructor rejects other values").
func (c Config) Validate() error {
	for name, v := range map[string]int{
		"WorkerQueueCapacity": c.WorkerQueueCapacity,
		"GlobalQueueCapacity": c.GlobalQueueCapacity,
		"MailboxCapacity":     c.MailboxCapacity,
	} {
		if !isPowerOfTwo(v) {
			return fmt.Errorf("actor: %s must be a power of two, got %d", name, v)
		}
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("actor: BatchSize must be positive, got %d", c.BatchSize)
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
