package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewSessionsCommand creates the sessions command
func NewSessionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List tracking session history",
		Long: `List past and present tracking sessions, newest first.

Examples:
  reinforce sessions
  reinforce sessions --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			sessions, err := client.Sessions(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			if len(sessions) == 0 {
				fmt.Println("No sessions found")
				return nil
			}

			fmt.Printf("%-28s %-20s %-6s %-10s %s\n",
				"SESSION ID", "MAP", "TEAM", "STATUS", "STARTED")
			fmt.Println("───────────────────────────────────────────────────────────────────────────────")

			for _, s := range sessions {
				started := "-"
				if s.StartedAt != nil {
					started = formatTime(*s.StartedAt)
				}

				fmt.Printf("%-28s %-20s %-6d %-10s %s\n",
					truncate(s.SessionID, 28),
					truncate(s.MapName, 20),
					s.Team,
					s.Status,
					started,
				)
			}

			fmt.Printf("\nTotal: %d sessions\n", len(sessions))

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sessions")

	return cmd
}
