package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewUntagCommand creates the untag command
func NewUntagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "untag <unit-id>...",
		Short: "Remove replacement watches",
		Long: `Stop watching one or more units. Untagged units are no longer
replaced when destroyed.

Examples:
  reinforce untag 12
  reinforce untag 12 14`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitIDs, err := parseUnitIDs(args)
			if err != nil {
				return err
			}

			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := client.UntagUnits(ctx, unitIDs)
			if err != nil {
				return fmt.Errorf("failed to untag units: %w", err)
			}

			fmt.Printf("✓ Removed %d of %d watches\n", result.Removed, len(unitIDs))

			return nil
		},
	}

	return cmd
}
