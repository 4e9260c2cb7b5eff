package persistence

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/hashicorp/go-memdb"

	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
)

// Memory-backed repositories for running without a database. Session history
// lives only as long as the daemon process.

// MemorySessionRepository implements session persistence on go-memdb
type MemorySessionRepository struct {
	db *memdb.MemDB
}

// NewMemorySessionRepository creates an in-memory session repository
func NewMemorySessionRepository() (*MemorySessionRepository, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"sessions": {
				Name: "sessions",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory session store: %w", err)
	}

	return &MemorySessionRepository{db: db}, nil
}

func (r *MemorySessionRepository) Save(_ context.Context, s *session.Session) error {
	var lastError string
	if err := s.LastError(); err != nil {
		lastError = err.Error()
	}

	record := &session.Record{
		ID:        s.ID(),
		GameID:    s.GameID(),
		MapName:   s.MapName(),
		Team:      s.Team(),
		Status:    string(s.Status()),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
		StartedAt: s.StartedAt(),
		StoppedAt: s.StoppedAt(),
		LastError: lastError,
	}

	txn := r.db.Txn(true)
	if err := txn.Insert("sessions", record); err != nil {
		txn.Abort()
		return fmt.Errorf("failed to save session: %w", err)
	}
	txn.Commit()

	return nil
}

func (r *MemorySessionRepository) FindByID(_ context.Context, id string) (session.Record, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First("sessions", "id", id)
	if err != nil {
		return session.Record{}, fmt.Errorf("failed to find session: %w", err)
	}
	if raw == nil {
		return session.Record{}, shared.NewSessionNotFoundError(id)
	}

	return *raw.(*session.Record), nil
}

func (r *MemorySessionRepository) List(_ context.Context, limit int) ([]session.Record, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("sessions", "id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var records []session.Record
	for obj := it.Next(); obj != nil; obj = it.Next() {
		records = append(records, *obj.(*session.Record))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// MemoryJournalRepository implements append-only journal persistence on go-memdb
type MemoryJournalRepository struct {
	db     *memdb.MemDB
	nextID atomic.Uint64
}

// NewMemoryJournalRepository creates an in-memory journal repository
func NewMemoryJournalRepository() (*MemoryJournalRepository, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"journal": {
				Name: "journal",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "ID"},
					},
					"session": {
						Name:    "session",
						Indexer: &memdb.StringFieldIndex{Field: "SessionID"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory journal store: %w", err)
	}

	return &MemoryJournalRepository{db: db}, nil
}

func (r *MemoryJournalRepository) Append(_ context.Context, entry session.JournalEntry) error {
	entry.ID = uint(r.nextID.Add(1))

	txn := r.db.Txn(true)
	if err := txn.Insert("journal", &entry); err != nil {
		txn.Abort()
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	txn.Commit()

	return nil
}

func (r *MemoryJournalRepository) ListBySession(_ context.Context, sessionID string, limit int) ([]session.JournalEntry, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("journal", "session", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	var entries []session.JournalEntry
	for obj := it.Next(); obj != nil; obj = it.Next() {
		entries = append(entries, *obj.(*session.JournalEntry))
	}

	// Newest first, matching the GORM repository
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
