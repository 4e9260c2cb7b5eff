package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
)

// SessionRepositoryGORM implements session persistence using GORM
type SessionRepositoryGORM struct {
	db *gorm.DB
}

// NewSessionRepository creates a new GORM-based session repository
func NewSessionRepository(db *gorm.DB) *SessionRepositoryGORM {
	return &SessionRepositoryGORM{db: db}
}

// Save upserts the session row. Called on every lifecycle transition, so an
// existing row just gets its status columns refreshed.
func (r *SessionRepositoryGORM) Save(ctx context.Context, s *session.Session) error {
	var lastError string
	if err := s.LastError(); err != nil {
		lastError = err.Error()
	}

	model := &SessionModel{
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

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at", "started_at", "stopped_at", "last_error"}),
	}).Create(model).Error

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// FindByID retrieves a single session record
func (r *SessionRepositoryGORM) FindByID(ctx context.Context, id string) (session.Record, error) {
	var model SessionModel

	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return session.Record{}, shared.NewSessionNotFoundError(id)
		}
		return session.Record{}, fmt.Errorf("failed to find session: %w", result.Error)
	}

	return recordFromModel(model), nil
}

// List returns session records newest first, up to limit. A non-positive
// limit returns everything.
func (r *SessionRepositoryGORM) List(ctx context.Context, limit int) ([]session.Record, error) {
	var models []SessionModel

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	records := make([]session.Record, 0, len(models))
	for _, model := range models {
		records = append(records, recordFromModel(model))
	}

	return records, nil
}

func recordFromModel(model SessionModel) session.Record {
	return session.Record{
		ID:        model.ID,
		GameID:    model.GameID,
		MapName:   model.MapName,
		Team:      model.Team,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		StartedAt: model.StartedAt,
		StoppedAt: model.StoppedAt,
		LastError: model.LastError,
	}
}
