package lifecycle

import (
	"context"
	"log/slog"

	"github.com/rtsops/reinforce/internal/application/common"
	"github.com/rtsops/reinforce/internal/domain/session"
)

// journalEvent appends a journal entry, logging instead of failing when the
// journal is unavailable. Event processing never depends on the journal.
func journalEvent(ctx context.Context, journal session.JournalRepository, entry session.JournalEntry) {
	if journal == nil {
		return
	}
	if err := journal.Append(ctx, entry); err != nil {
		common.LoggerFromContext(ctx).Log(slog.LevelWarn, "journal append failed", "event", entry.Event, "error", err)
	}
}
