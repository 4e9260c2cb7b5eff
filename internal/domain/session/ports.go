package session

import (
	"context"
	"time"
)

// Record is the persisted view of a session, used for listing and status
// output. Live decisions never come from records.
type Record struct {
	ID        string
	GameID    string
	MapName   string
	Team      int
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	StartedAt *time.Time
	StoppedAt *time.Time
	LastError string
}

// Repository defines session persistence operations
type Repository interface {
	Save(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
}

// JournalRepository defines append-only journal persistence
type JournalRepository interface {
	Append(ctx context.Context, entry JournalEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]JournalEntry, error)
}
