package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	socketPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reinforce",
		Short: "Reinforce CLI - Interact with the replacement tracking daemon",
		Long: `Reinforce CLI provides commands to inspect and steer the replacement
order tracker. The CLI communicates with the daemon via Unix socket.

Examples:
  reinforce status
  reinforce tag 12 14 31
  reinforce untag 14
  reinforce watches --orders
  reinforce pending
  reinforce sessions --limit 10
  reinforce journal sess-twin-rivers-a3f8e2b1 --limit 50
  reinforce stop`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Global setup (if needed)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon control socket")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewWatchesCommand())
	rootCmd.AddCommand(NewPendingCommand())
	rootCmd.AddCommand(NewTagCommand())
	rootCmd.AddCommand(NewUntagCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewSessionsCommand())
	rootCmd.AddCommand(NewJournalCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default control socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("REINFORCE_SOCKET"); path != "" {
		return path
	}
	return "/tmp/reinforce-control.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
