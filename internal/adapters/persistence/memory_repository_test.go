package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtsops/reinforce/internal/adapters/persistence"
	"github.com/rtsops/reinforce/internal/domain/session"
	"github.com/rtsops/reinforce/internal/domain/shared"
)

func TestMemorySessionRepository_SaveAndFind(t *testing.T) {
	// Arrange
	repo, err := persistence.NewMemorySessionRepository()
	require.NoError(t, err)

	clock := shared.NewMockClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	sess := newRunningSession(t, "sess-twin-rivers-1", clock)

	// Act
	require.NoError(t, repo.Save(context.Background(), sess))
	found, err := repo.FindByID(context.Background(), "sess-twin-rivers-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "sess-twin-rivers-1", found.ID)
	assert.Equal(t, "RUNNING", found.Status)

	_, err = repo.FindByID(context.Background(), "sess-unknown")
	var notFound *shared.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMemorySessionRepository_SaveReplacesRow(t *testing.T) {
	// Arrange
	repo, err := persistence.NewMemorySessionRepository()
	require.NoError(t, err)

	clock := shared.NewMockClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	sess := newRunningSession(t, "sess-twin-rivers-1", clock)
	require.NoError(t, repo.Save(context.Background(), sess))

	// Act
	clock.Advance(30 * time.Minute)
	require.NoError(t, sess.Complete())
	require.NoError(t, repo.Save(context.Background(), sess))

	// Assert
	records, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "COMPLETED", records[0].Status)
}

func TestMemorySessionRepository_ListNewestFirst(t *testing.T) {
	// Arrange
	repo, err := persistence.NewMemorySessionRepository()
	require.NoError(t, err)

	clock := shared.NewMockClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	for _, id := range []string{"sess-a", "sess-b", "sess-c"} {
		sess := newRunningSession(t, id, clock)
		require.NoError(t, repo.Save(context.Background(), sess))
		clock.Advance(time.Hour)
	}

	// Act
	records, err := repo.List(context.Background(), 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sess-c", records[0].ID)
	assert.Equal(t, "sess-b", records[1].ID)
}

func TestMemoryJournalRepository_AppendAndList(t *testing.T) {
	// Arrange
	repo, err := persistence.NewMemoryJournalRepository()
	require.NoError(t, err)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		entry := session.JournalEntry{
			SessionID: "sess-a",
			Event:     session.JournalEventTagged,
			UnitID:    i,
			UnitType:  "tank",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Append(context.Background(), entry))
	}
	require.NoError(t, repo.Append(context.Background(), session.JournalEntry{
		SessionID: "sess-b",
		Event:     session.JournalEventUntagged,
		UnitID:    9,
		UnitType:  "scout",
		CreatedAt: base,
	}))

	// Act
	listed, err := repo.ListBySession(context.Background(), "sess-a", 2)

	// Assert - newest first, other sessions excluded
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 3, listed[0].UnitID)
	assert.Equal(t, 2, listed[1].UnitID)
}
