package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rtsops/reinforce/internal/domain/session"
)

// JournalRepositoryGORM implements append-only journal persistence using GORM
type JournalRepositoryGORM struct {
	db *gorm.DB
}

// NewJournalRepository creates a new GORM-based journal repository
func NewJournalRepository(db *gorm.DB) *JournalRepositoryGORM {
	return &JournalRepositoryGORM{db: db}
}

// Append writes one journal entry
func (r *JournalRepositoryGORM) Append(ctx context.Context, entry session.JournalEntry) error {
	model := &JournalEntryModel{
		SessionID: entry.SessionID,
		Event:     entry.Event,
		UnitID:    entry.UnitID,
		UnitType:  entry.UnitType,
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	return nil
}

// ListBySession returns a session's journal newest first, up to limit. A
// non-positive limit returns the whole journal.
func (r *JournalRepositoryGORM) ListBySession(ctx context.Context, sessionID string, limit int) ([]session.JournalEntry, error) {
	var models []JournalEntryModel

	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	entries := make([]session.JournalEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, session.JournalEntry{
			ID:        model.ID,
			SessionID: model.SessionID,
			Event:     model.Event,
			UnitID:    model.UnitID,
			UnitType:  model.UnitType,
			Detail:    model.Detail,
			CreatedAt: model.CreatedAt,
		})
	}

	return entries, nil
}
