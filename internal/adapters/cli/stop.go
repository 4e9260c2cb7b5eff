package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewStopCommand creates the stop command
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active tracking session",
		Long: `Stop the active session. Watches and pending builds are discarded;
the session record and its journal stay in history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			result, err := client.StopSession(ctx)
			if err != nil {
				return fmt.Errorf("failed to stop session: %w", err)
			}

			fmt.Printf("✓ Session stopped: %s\n", result.SessionID)

			return nil
		},
	}

	return cmd
}
