package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewWatchesCommand creates the watches command
func NewWatchesCommand() *cobra.Command {
	var showOrders bool

	cmd := &cobra.Command{
		Use:   "watches",
		Short: "List active replacement watches",
		Long: `List every unit currently tagged for replacement, with its captured
order queue.

Examples:
  reinforce watches
  reinforce watches --orders`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			watches, err := client.Watches(ctx)
			if err != nil {
				return fmt.Errorf("failed to list watches: %w", err)
			}

			if len(watches) == 0 {
				fmt.Println("No active watches")
				return nil
			}

			if showOrders {
				formatter := NewQueueFormatter()
				for i, w := range watches {
					if i > 0 {
						fmt.Println()
					}
					fmt.Print(formatter.FormatWatch(w))
				}
				fmt.Printf("\nTotal: %d watches\n", len(watches))
				return nil
			}

			fmt.Printf("%-8s %-16s %-8s %-8s %s\n",
				"UNIT", "TYPE", "ORDERS", "FACTORY", "TAGGED")
			fmt.Println("─────────────────────────────────────────────────────────────")

			for _, w := range watches {
				fmt.Printf("%-8d %-16s %-8d %-8d %s\n",
					w.UnitID,
					truncate(w.UnitType, 16),
					len(w.Orders),
					len(w.FactoryOrders),
					formatTime(w.CreatedAt),
				)
			}

			fmt.Printf("\nTotal: %d watches\n", len(watches))

			return nil
		},
	}

	cmd.Flags().BoolVar(&showOrders, "orders", false, "Show captured order queues")

	return cmd
}
