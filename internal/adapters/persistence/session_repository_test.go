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
	"github.com/rtsops/reinforce/test/helpers"
)

func newRunningSession(t *testing.T, id string, clock shared.Clock) *session.Session {
	t.Helper()
	sess, err := session.NewSession(id, "iron-dawn", "Twin Rivers", 1, clock)
	require.NoError(t, err)
	require.NoError(t, sess.Start())
	return sess
}

func TestSessionRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewSessionRepository(db)

	clock := shared.NewMockClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	sess := newRunningSession(t, "sess-twin-rivers-1", clock)

	// Act - Save
	err := repo.Save(context.Background(), sess)

	// Assert
	require.NoError(t, err)

	// Act - FindByID
	found, err := repo.FindByID(context.Background(), "sess-twin-rivers-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "sess-twin-rivers-1", found.ID)
	assert.Equal(t, "iron-dawn", found.GameID)
	assert.Equal(t, "Twin Rivers", found.MapName)
	assert.Equal(t, 1, found.Team)
	assert.Equal(t, "RUNNING", found.Status)
	require.NotNil(t, found.StartedAt)
	assert.Nil(t, found.StoppedAt)
}

func TestSessionRepository_SaveUpdatesExistingRow(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewSessionRepository(db)

	clock := shared.NewMockClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	sess := newRunningSession(t, "sess-twin-rivers-1", clock)
	require.NoError(t, repo.Save(context.Background(), sess))

	// Act - complete and save again
	clock.Advance(45 * time.Minute)
	require.NoError(t, sess.Complete())
	require.NoError(t, repo.Save(context.Background(), sess))

	// Assert - one row, updated status
	records, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "COMPLETED", records[0].Status)
	require.NotNil(t, records[0].StoppedAt)
}

func TestSessionRepository_ListNewestFirstWithLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewSessionRepository(db)

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

func TestSessionRepository_FindMissingSession(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewSessionRepository(db)

	// Act
	_, err := repo.FindByID(context.Background(), "sess-unknown")

	// Assert
	require.Error(t, err)
	var notFound *shared.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "sess-unknown", notFound.SessionID)
}
