package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewTagCommand creates the tag command
func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <unit-id>...",
		Short: "Tag units for replacement",
		Long: `Tag one or more units for replacement. A tagged unit is watched and
its order queue captured when it is destroyed.

Examples:
  reinforce tag 12
  reinforce tag 12 14 31`,
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

			result, err := client.TagUnits(ctx, unitIDs)
			if err != nil {
				return fmt.Errorf("failed to tag units: %w", err)
			}

			fmt.Printf("✓ Tagged %d of %d units for replacement\n", result.Tagged, len(unitIDs))

			return nil
		},
	}

	return cmd
}
