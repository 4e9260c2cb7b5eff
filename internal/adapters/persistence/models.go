package persistence

import (
	"time"
)

// SessionModel represents the sessions table. One row per game the daemon
// has tracked; the running session updates its row in place.
type SessionModel struct {
	ID        string     `gorm:"column:id;primaryKey;not null"`
	GameID    string     `gorm:"column:game_id"`
	MapName   string     `gorm:"column:map_name;not null"`
	Team      int        `gorm:"column:team;not null"`
	Status    string     `gorm:"column:status;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null"`
	StartedAt *time.Time `gorm:"column:started_at"`
	StoppedAt *time.Time `gorm:"column:stopped_at"`
	LastError string     `gorm:"column:last_error"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

// JournalEntryModel represents the session_journal table. Append-only; the
// journal is the replay record of every tracking decision in a session.
type JournalEntryModel struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID string    `gorm:"column:session_id;not null;index:idx_journal_session_time"`
	Event     string    `gorm:"column:event;not null"`
	UnitID    int       `gorm:"column:unit_id"`
	UnitType  string    `gorm:"column:unit_type"`
	Detail    string    `gorm:"column:detail;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_journal_session_time"`
}

func (JournalEntryModel) TableName() string {
	return "session_journal"
}
