package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewPendingCommand creates the pending command
func NewPendingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending replacement builds",
		Long: `List replacements queued at factories that have not finished
building yet. Each entry holds the order queue its unit will receive.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			builds, err := client.PendingBuilds(ctx)
			if err != nil {
				return fmt.Errorf("failed to list pending builds: %w", err)
			}

			if len(builds) == 0 {
				fmt.Println("No pending builds")
				return nil
			}

			fmt.Printf("%-16s %-10s %-8s %s\n",
				"TYPE", "FACTORY", "ORDERS", "QUEUED")
			fmt.Println("──────────────────────────────────────────────────")

			for _, b := range builds {
				fmt.Printf("%-16s %-10d %-8d %s\n",
					truncate(b.UnitType, 16),
					b.FactoryID,
					len(b.Orders),
					formatTime(b.QueuedAt),
				)
			}

			fmt.Printf("\nTotal: %d pending builds\n", len(builds))

			return nil
		},
	}

	return cmd
}
