package commands

import (
	"github.com/spf13/cobra"
)

var (
	// workers is the worker pool size; zero means auto-detect.
	workers int

	// mailboxCap is the per-actor mailbox capacity.
	mailboxCap int

	// iterations controls how much work each scenario drives through
	// the system before reporting stats.
	iterations int

	// quiet suppresses the per-scenario narration, printing only the
	// final stats line.
	quiet bool
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "actorbench",
	Short: "Exercise and benchmark the actorcore runtime",
	Long: `actorbench drives the actorcore actor system through a set of
named scenarios — echo, pingpong, backpressure, stealing, restart, and
escalate — printing the resulting stats for each run.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(
		&workers, "workers", 0,
		"Scheduler worker count (0 = runtime.NumCPU())",
	)
	rootCmd.PersistentFlags().IntVar(
		&mailboxCap, "mailbox-cap", 1024,
		"Per-actor mailbox capacity (rounded up to a power of two)",
	)
	rootCmd.PersistentFlags().IntVar(
		&iterations, "iterations", 10000,
		"Number of messages driven through the scenario",
	)
	rootCmd.PersistentFlags().BoolVar(
		&quiet, "quiet", false,
		"Print only the final stats line",
	)

	rootCmd.AddCommand(echoCmd)
	rootCmd.AddCommand(pingpongCmd)
	rootCmd.AddCommand(backpressureCmd)
	rootCmd.AddCommand(stealingCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(escalateCmd)
}
