package session

import "time"

// JournalEntry is one line of a session's append-only event journal. The
// journal exists for post-game inspection; nothing reads it back into
// replacement decisions.
type JournalEntry struct {
	ID        uint
	SessionID string
	Event     string
	UnitID    int
	UnitType  string
	Detail    string
	CreatedAt time.Time
}

// Journal event names beyond the engine lifecycle events.
const (
	JournalEventTagged      = "tagged"
	JournalEventUntagged    = "untagged"
	JournalEventReconciled  = "reconciled"
	JournalEventSessionOpen = "session_open"
	JournalEventSessionEnd  = "session_end"
)
