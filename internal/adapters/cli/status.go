package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active tracking session",
		Long:  `Display the active session with its watch and pending build counts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			status, err := client.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get session status: %w", err)
			}

			fmt.Printf("Session: %s\n", status.SessionID)
			fmt.Println("══════════════════════════════════════════════")
			if status.GameID != "" {
				fmt.Printf("  Game:           %s\n", status.GameID)
			}
			fmt.Printf("  Map:            %s\n", status.MapName)
			fmt.Printf("  Team:           %d\n", status.Team)
			fmt.Printf("  Status:         %s\n", status.Status)
			fmt.Printf("  Uptime:         %s\n", formatUptime(status.UptimeSeconds))
			fmt.Printf("  Watches:        %d\n", status.Watches)
			fmt.Printf("  Pending Builds: %d\n", status.PendingBuilds)
			fmt.Printf("  In Transit:     %d\n", status.InTransit)

			return nil
		},
	}

	return cmd
}

func formatUptime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	return d.Round(time.Second).String()
}
