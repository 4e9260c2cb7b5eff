package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtsops/reinforce/internal/adapters/daemonctl"
)

// NewJournalCommand creates the journal command
func NewJournalCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal <session-id>",
		Short: "Show the journal of a session",
		Long: `Show the tracking journal of a session. Every tag, destruction,
adoption and replacement build is recorded as a journal entry.

Examples:
  reinforce journal sess-deltasiegedryx-a3f8e2b1
  reinforce journal sess-deltasiegedryx-a3f8e2b1 --limit 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			client, err := daemonctl.NewClient(socketPath)
			if err != nil {
				return fmt.Errorf("failed to connect to daemon: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			journal, err := client.Journal(ctx, sessionID, limit)
			if err != nil {
				return fmt.Errorf("failed to get journal: %w", err)
			}

			if len(journal.Entries) == 0 {
				fmt.Println("No journal entries for session:", sessionID)
				return nil
			}

			// Display entries in reverse order (oldest first)
			for i := len(journal.Entries) - 1; i >= 0; i-- {
				entry := journal.Entries[i]
				fmt.Printf("[%s] [%s]%s\n",
					entry.CreatedAt.Format("2006-01-02 15:04:05"),
					entry.Event,
					formatJournalDetail(entry),
				)
			}

			fmt.Printf("\nTotal: %d journal entries\n", len(journal.Entries))

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of journal entries")

	return cmd
}

func formatJournalDetail(entry daemonctl.JournalEntryInfo) string {
	out := ""
	if entry.UnitID != 0 {
		out = fmt.Sprintf(" unit %d", entry.UnitID)
		if entry.UnitType != "" {
			out += fmt.Sprintf(" (%s)", entry.UnitType)
		}
	}
	if entry.Detail != "" {
		out += ": " + entry.Detail
	}
	return out
}
